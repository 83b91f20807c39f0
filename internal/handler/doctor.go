package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emergid/emergency-medical-id/internal/model"
	"github.com/emergid/emergency-medical-id/internal/queue"
	"github.com/emergid/emergency-medical-id/internal/repository"
	queue_publisher "github.com/emergid/emergency-medical-id/internal/service"
)

// DoctorHandler serves the emergency lookup endpoint. Every lookup attempt
// by a doctor is recorded in the audit log, successful or not, before the
// response goes out; the recorded outcome distinguishes the two.
type DoctorHandler struct {
	Patients   *repository.PatientRepo
	AccessLogs *repository.AccessLogRepo
	Publish    bool // when true, recorded accesses are also published to the broker
}

func NewDoctorHandler(p *repository.PatientRepo, a *repository.AccessLogRepo, publish bool) *DoctorHandler {
	if p == nil || a == nil {
		panic("nil repository passed to NewDoctorHandler")
	}
	return &DoctorHandler{Patients: p, AccessLogs: a, Publish: publish}
}

// LookupPatient handles GET /api/doctor/patient/:patientId. Only finalized
// profiles resolve; drafts and unknown IDs are both 404 with no hint which
// one it was.
func (h *DoctorHandler) LookupPatient(c echo.Context) error {
	doctorID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, model.CodeAuthRequired, "unauthorized")
	}
	publicID := c.Param("patientId")
	if publicID == "" {
		return fail(c, http.StatusBadRequest, model.CodeValidation, "patient id required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, lookupErr := h.Patients.GetByPublicID(ctx, publicID)
	if lookupErr != nil && lookupErr != repository.ErrPatientNotFound {
		// Store trouble, not an answer; nothing meaningful to audit.
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "lookup failed")
	}

	outcome := model.AccessGranted
	if lookupErr != nil {
		outcome = model.AccessNotFound
	}
	entry, logErr := h.AccessLogs.Record(ctx, model.AccessLog{
		PublicID:   publicID,
		AccessedBy: doctorID,
		Email:      getEmail(c),
		Outcome:    outcome,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	})
	if logErr != nil {
		// The audit row is mandatory; a lookup that cannot be recorded is
		// not served.
		return fail(c, http.StatusInternalServerError, model.CodeStoreUnavailable, "audit log failed")
	}
	if h.Publish {
		// Best effort: the DB row above is the source of truth, the broker
		// only feeds the file log and any future alerting.
		go func(ev queue.AccessRecordedEvent) {
			bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := queue_publisher.PublishAccessRecorded(bg, ev); err != nil {
				log.Printf("access event publish failed: %v", err)
			}
		}(queue.AccessRecordedEvent{
			PatientID:       entry.PublicID,
			AccessedByID:    entry.AccessedBy,
			AccessedByEmail: entry.Email,
			Outcome:         entry.Outcome,
			IPAddress:       entry.IPAddress,
			UserAgent:       entry.UserAgent,
			AccessTime:      entry.AccessTime.Format(time.RFC3339),
		})
	}

	if lookupErr != nil {
		return fail(c, http.StatusNotFound, model.CodeNotFound, "patient not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"patient":    toPatientView(p),
		"accessTime": entry.AccessTime,
	})
}
