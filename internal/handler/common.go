package handler // handler defines the HTTP handlers of the service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emergid/emergency-medical-id/internal/model"
)

// getUserID extracts the user_id set by the JWTAuth middleware and converts
// it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("no user id in context")
}

// getEmail extracts the verified email set by the JWTAuth middleware.
func getEmail(c echo.Context) string {
	if s, ok := c.Get("email").(string); ok {
		return s
	}
	return ""
}

// patientView is the JSON shape of a profile in API responses. Field names
// follow the dashboards' expectations.
type patientView struct {
	PatientID        string                 `json:"patientId"`
	PersonalInfo     model.PersonalInfo     `json:"personalInfo"`
	MedicalInfo      model.MedicalInfo      `json:"medicalInfo"`
	EmergencyContact model.EmergencyContact `json:"emergencyContact"`
	QRCodeImage      string                 `json:"qrCodeImage"`
	IsFinalized      bool                   `json:"isProfileFinalized"`
	UpdatedAt        string                 `json:"updatedAt"`
}

func toPatientView(p model.Patient) patientView {
	return patientView{
		PatientID:        p.PublicID,
		PersonalInfo:     p.Personal,
		MedicalInfo:      p.Medical,
		EmergencyContact: p.Contact,
		QRCodeImage:      p.QRImage,
		IsFinalized:      p.Finalized,
		UpdatedAt:        p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
