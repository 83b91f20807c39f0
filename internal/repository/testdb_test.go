// Repository tests run against an in-memory SQLite database; no external
// services required. The SQL in the repositories sticks to ? placeholders
// and Go-side timestamps, so the same statements run on MySQL in production
// and SQLite here.
package repository_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

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

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
