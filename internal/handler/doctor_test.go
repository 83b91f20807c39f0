package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergid/emergency-medical-id/internal/model"
)

// countAuditRows returns the number of audit entries for a public ID,
// straight from the store.
func countAuditRows(t *testing.T, app *testApp, publicID string) int {
	t.Helper()
	var n int
	if err := app.DB.QueryRow("SELECT COUNT(*) FROM access_logs WHERE public_id=?", publicID).Scan(&n); err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	return n
}

// savePatientProfile registers a patient, saves a full profile and returns
// the minted public patient ID.
func savePatientProfile(t *testing.T, app *testApp, email string) string {
	t.Helper()
	token := app.registerAndLogin(t, email, "Secret1!", "patient")
	rec, resp := app.do(t, http.MethodPost, "/api/patient/profile", token, fullProfileBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return resp["patient"].(map[string]any)["patientId"].(string)
}

func TestDoctorLookup_Granted(t *testing.T) {
	app := newTestApp(t)
	publicID := savePatientProfile(t, app, "p@x.com")
	docToken := app.registerAndLogin(t, "doc@x.com", "Secret1!", "doctor")

	rec, resp := app.do(t, http.MethodGet, "/api/doctor/patient/"+publicID, docToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["accessTime"])

	patient := resp["patient"].(map[string]any)
	assert.Equal(t, publicID, patient["patientId"])
	assert.Equal(t, "Jane", patient["personalInfo"].(map[string]any)["firstName"])

	// Exactly one audit entry, attributed to the doctor, outcome granted.
	assert.Equal(t, 1, countAuditRows(t, app, publicID))
	var email, outcome string
	require.NoError(t, app.DB.QueryRow(
		"SELECT email, outcome FROM access_logs WHERE public_id=?", publicID).Scan(&email, &outcome))
	assert.Equal(t, "doc@x.com", email)
	assert.Equal(t, model.AccessGranted, outcome)
}

func TestDoctorLookup_UnknownIDIs404AndAudited(t *testing.T) {
	app := newTestApp(t)
	docToken := app.registerAndLogin(t, "doc@x.com", "Secret1!", "doctor")

	rec, resp := app.do(t, http.MethodGet, "/api/doctor/patient/EMG-0-MISSING0", docToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", resp["code"])

	// Failed attempts are audited too, with a distinct outcome.
	assert.Equal(t, 1, countAuditRows(t, app, "EMG-0-MISSING0"))
	var outcome string
	require.NoError(t, app.DB.QueryRow(
		"SELECT outcome FROM access_logs WHERE public_id=?", "EMG-0-MISSING0").Scan(&outcome))
	assert.Equal(t, model.AccessNotFound, outcome)
}

func TestDoctorLookup_PatientTokenForbiddenAndNotAudited(t *testing.T) {
	app := newTestApp(t)
	publicID := savePatientProfile(t, app, "p@x.com")
	patientToken := app.registerAndLogin(t, "p2@x.com", "Secret1!", "patient")

	rec, resp := app.do(t, http.MethodGet, "/api/doctor/patient/"+publicID, patientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AUTHORIZATION_DENIED", resp["code"])

	// The role gate fires before the handler; no audit entry is written.
	assert.Equal(t, 0, countAuditRows(t, app, publicID))
}

func TestDoctorLookup_RequiresToken(t *testing.T) {
	app := newTestApp(t)
	publicID := savePatientProfile(t, app, "p@x.com")

	rec, resp := app.do(t, http.MethodGet, "/api/doctor/patient/"+publicID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", resp["code"])
}

func TestDoctorLookup_SuccessiveLookupsAppend(t *testing.T) {
	app := newTestApp(t)
	publicID := savePatientProfile(t, app, "p@x.com")
	docToken := app.registerAndLogin(t, "doc@x.com", "Secret1!", "doctor")

	for i := 0; i < 3; i++ {
		rec, _ := app.do(t, http.MethodGet, "/api/doctor/patient/"+publicID, docToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, countAuditRows(t, app, publicID))

	// The patient sees the trail through their own endpoint.
	ownerToken := app.loginExisting(t, "p@x.com", "Secret1!")
	rec, resp := app.do(t, http.MethodGet, "/api/patient/access-logs", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), resp["total"])
	logs := resp["logs"].([]any)
	require.Len(t, logs, 3)
	assert.Equal(t, "doc@x.com", logs[0].(map[string]any)["accessedByEmail"])
}
