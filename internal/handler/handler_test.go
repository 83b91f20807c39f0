// Handler tests drive the full HTTP surface through a real Echo instance
// with SQLite-backed repositories. Redis and the message broker are absent,
// which exercises the degraded paths the production stack also supports.
package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"

	"github.com/emergid/emergency-medical-id/internal/config"
	"github.com/emergid/emergency-medical-id/internal/handler"
	"github.com/emergid/emergency-medical-id/internal/repository"
	"github.com/emergid/emergency-medical-id/internal/router"
)

const testDoctorCode = "DOC_TEST"

const testSchema = `
CREATE TABLE users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'patient',
	is_active     BOOLEAN NOT NULL DEFAULT 1,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);
CREATE TABLE patients (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id              INTEGER NOT NULL UNIQUE,
	public_id            TEXT NOT NULL UNIQUE,
	first_name           TEXT NOT NULL DEFAULT '',
	last_name            TEXT NOT NULL DEFAULT '',
	date_of_birth        TEXT NOT NULL DEFAULT '',
	blood_type           TEXT NOT NULL DEFAULT '',
	allergies            TEXT NOT NULL,
	conditions           TEXT NOT NULL,
	medications          TEXT NOT NULL,
	contact_name         TEXT NOT NULL DEFAULT '',
	contact_phone        TEXT NOT NULL DEFAULT '',
	contact_relationship TEXT NOT NULL DEFAULT '',
	qr_image             TEXT NOT NULL,
	finalized            BOOLEAN NOT NULL DEFAULT 0,
	updated_at           DATETIME NOT NULL
);
CREATE TABLE access_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	public_id   TEXT NOT NULL,
	accessed_by INTEGER NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	ip_address  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	access_time DATETIME NOT NULL
);
`

type testApp struct {
	E  *echo.Echo
	DB *sql.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	cfg := config.Config{
		Env:          "test",
		JWTSecret:    "handler-test-secret",
		TokenTTLDays: 7,
		BcryptCost:   4,
		DoctorCode:   testDoctorCode,
		MinPwLen:     6,
	}

	users := repository.NewUserRepo(db)
	patients := repository.NewPatientRepo(db)
	accessLogs := repository.NewAccessLogRepo(db)

	e := echo.New()
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, nil), users, nil, config.RateLimitConfig{})
	router.RegisterPatient(e, handler.NewPatientHandler(patients, accessLogs), users, nil, cfg.JWTSecret)
	router.RegisterDoctor(e, handler.NewDoctorHandler(patients, accessLogs, false), users, nil, cfg.JWTSecret)

	return &testApp{E: e, DB: db}
}

// do performs a request against the in-memory app and decodes the JSON body.
func (a *testApp) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.E.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

// registerAndLogin creates an account and returns a usable bearer token.
func (a *testApp) registerAndLogin(t *testing.T, email, password, role string) string {
	t.Helper()
	body := map[string]any{"email": email, "password": password, "role": role}
	if role == "doctor" {
		body["doctorCode"] = testDoctorCode
	}
	rec, _ := a.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	rec, resp := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in response %s", email, rec.Body.String())
	}
	return token
}

// loginExisting logs an already-registered account in and returns its token.
func (a *testApp) loginExisting(t *testing.T, email, password string) string {
	t.Helper()
	rec, resp := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token", email)
	}
	return token
}

// fullProfileBody is a save-profile request with every required field set.
func fullProfileBody() map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{
			"firstName":   "Jane",
			"lastName":    "Doe",
			"dateOfBirth": "1990-04-01",
			"bloodType":   "O-",
		},
		"medicalInfo": map[string]any{
			"allergies":   []string{"penicillin"},
			"conditions":  []string{"asthma"},
			"medications": []string{"albuterol"},
		},
		"emergencyContact": map[string]any{
			"name":         "John Doe",
			"phone":        "+1-555-0100",
			"relationship": "spouse",
		},
	}
}
