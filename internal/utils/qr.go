package utils

import (
	"encoding/base64"
	"encoding/json"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPayload is the JSON document encoded into a profile's QR image. It
// carries only the fields a first responder needs before the full profile
// loads; everything else is fetched by patientId.
type QRPayload struct {
	PatientID      string `json:"patientId"`
	Name           string `json:"name"`
	BloodType      string `json:"bloodType"`
	EmergencyPhone string `json:"emergencyPhone"`
	GeneratedAt    string `json:"generatedAt"` // RFC 3339 UTC
}

// NewQRImage renders the payload as a PNG QR code and returns it as a
// base64 data URL, the format the dashboards embed directly into an <img>
// tag. The image is derived state: it is regenerated on every profile save
// and never edited independently.
func NewQRImage(p QRPayload) (string, error) {
	if p.GeneratedAt == "" {
		p.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	png, err := qrcode.Encode(string(body), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
