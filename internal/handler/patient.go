package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emergid/emergency-medical-id/internal/model"
	"github.com/emergid/emergency-medical-id/internal/repository"
	"github.com/emergid/emergency-medical-id/internal/utils"
)

// PatientHandler serves the patient-role endpoints: reading and saving the
// caller's own profile and listing who accessed it. Role enforcement has
// already happened in middleware; these handlers only ever touch rows keyed
// by the authenticated user id, so a patient cannot read another patient's
// data regardless of the input.
type PatientHandler struct {
	Patients   *repository.PatientRepo
	AccessLogs *repository.AccessLogRepo
}

func NewPatientHandler(p *repository.PatientRepo, a *repository.AccessLogRepo) *PatientHandler {
	if p == nil || a == nil {
		panic("nil repository passed to NewPatientHandler")
	}
	return &PatientHandler{Patients: p, AccessLogs: a}
}

type saveProfileReq struct {
	PersonalInfo     model.PersonalInfo     `json:"personalInfo"`
	MedicalInfo      model.MedicalInfo      `json:"medicalInfo"`
	EmergencyContact model.EmergencyContact `json:"emergencyContact"`
}

// validate reports the first missing required field, or "" when the input
// is complete. Validation runs at the boundary so nothing partial is ever
// persisted.
func (r saveProfileReq) validate() string {
	checks := []struct {
		name, value string
	}{
		{"personalInfo.firstName", r.PersonalInfo.FirstName},
		{"personalInfo.lastName", r.PersonalInfo.LastName},
		{"personalInfo.dateOfBirth", r.PersonalInfo.DateOfBirth},
		{"personalInfo.bloodType", r.PersonalInfo.BloodType},
		{"emergencyContact.name", r.EmergencyContact.Name},
		{"emergencyContact.phone", r.EmergencyContact.Phone},
	}
	for _, ch := range checks {
		if strings.TrimSpace(ch.value) == "" {
			return ch.name
		}
	}
	return ""
}

// renderProfileQR builds the emergency QR image for a profile as submitted.
func renderProfileQR(publicID string, req saveProfileReq) (string, error) {
	return utils.NewQRImage(utils.QRPayload{
		PatientID:      publicID,
		Name:           req.PersonalInfo.FirstName + " " + req.PersonalInfo.LastName,
		BloodType:      req.PersonalInfo.BloodType,
		EmergencyPhone: req.EmergencyContact.Phone,
	})
}

// GetProfile returns the caller's own profile, or patient:null when none
// has been saved yet.
func (h *PatientHandler) GetProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, model.CodeAuthRequired, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Patients.GetByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{"success": true, "patient": nil})
		}
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "profile fetch failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "patient": toPatientView(p)})
}

// SaveProfile upserts the caller's profile. The first save mints the public
// patient ID; every save regenerates the QR image, marks the profile
// finalized and refreshes updatedAt. Missing required fields reject the
// whole request before anything is written, and a finalized row is never
// persisted without its QR image.
func (h *PatientHandler) SaveProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, model.CodeAuthRequired, "unauthorized")
	}
	var req saveProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "invalid body")
	}
	if missing := req.validate(); missing != "" {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "missing required field: "+missing)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The QR encodes the public ID, so resolve the ID before anything is
	// written: reuse the existing one or mint a fresh one for a first save.
	// Profile fields, QR image and the finalized flag then land in a single
	// write; a failed save leaves no partial row behind.
	var publicID string
	existing, err := h.Patients.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		publicID = existing.PublicID
	case err == sql.ErrNoRows:
		publicID = utils.NewPublicPatientID()
	default:
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "profile fetch failed")
	}

	qr, err := renderProfileQR(publicID, req)
	if err != nil {
		return fail(c, http.StatusInternalServerError, model.CodeInternal, "qr generation failed")
	}

	p := model.Patient{
		UserID:    userID,
		PublicID:  publicID,
		Personal:  req.PersonalInfo,
		Medical:   req.MedicalInfo,
		Contact:   req.EmergencyContact,
		QRImage:   qr,
		Finalized: true,
	}
	saved, err := h.Patients.Upsert(ctx, p)
	if err != nil {
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "save failed")
	}

	// A lost create race keeps the winner's public ID; reissue the QR so
	// the stored image encodes the ID the row actually carries.
	if saved.PublicID != publicID {
		if qr, err = renderProfileQR(saved.PublicID, req); err != nil {
			return fail(c, http.StatusInternalServerError, model.CodeInternal, "qr generation failed")
		}
		saved.QRImage = qr
		if saved, err = h.Patients.Upsert(ctx, saved); err != nil {
			return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "save failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "profile saved",
		"patient": toPatientView(saved),
	})
}

// ListAccessLogs lists the audit entries for the caller's own profile,
// newest first. A patient without a profile has no public ID and therefore
// no entries.
func (h *PatientHandler) ListAccessLogs(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, model.CodeAuthRequired, "unauthorized")
	}
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Patients.GetByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{"success": true, "logs": []any{}, "total": 0})
		}
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "profile fetch failed")
	}

	entries, err := h.AccessLogs.ListByPublicID(ctx, p.PublicID, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "log fetch failed")
	}
	total, err := h.AccessLogs.CountByPublicID(ctx, p.PublicID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "log fetch failed")
	}

	type logView struct {
		AccessedByEmail string    `json:"accessedByEmail"`
		Outcome         string    `json:"outcome"`
		IPAddress       string    `json:"ipAddress"`
		UserAgent       string    `json:"userAgent"`
		AccessTime      time.Time `json:"accessTime"`
	}
	out := make([]logView, 0, len(entries))
	for _, e := range entries {
		out = append(out, logView{
			AccessedByEmail: e.Email,
			Outcome:         e.Outcome,
			IPAddress:       e.IPAddress,
			UserAgent:       e.UserAgent,
			AccessTime:      e.AccessTime,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "logs": out, "total": total})
}
