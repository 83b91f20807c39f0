package model

import "time"

// Access outcomes recorded in access_logs.outcome.
const (
	AccessGranted  = "granted"
	AccessNotFound = "not_found"
)

// AccessLog is one append-only row in the `access_logs` table, written for
// every doctor lookup attempt. Rows are never updated or deleted, and the
// table is never consulted by an authorization decision. References are by
// identifier only so the trail survives profile changes.
//
// Fields:
//  ID         – primary key identifier.
//  PublicID   – public patient identifier that was looked up.
//  AccessedBy – user ID of the doctor who performed the lookup.
//  Email      – doctor's email at the time of access.
//  Outcome    – "granted" or "not_found".
//  IPAddress  – origin address of the request.
//  UserAgent  – client descriptor of the request.
//  AccessTime – when the lookup happened (UTC).
type AccessLog struct {
	ID         uint64
	PublicID   string
	AccessedBy uint64
	Email      string
	Outcome    string
	IPAddress  string
	UserAgent  string
	AccessTime time.Time
}
