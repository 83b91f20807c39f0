package model

import "time"

// Role values stored in users.role. A role is fixed when the account is
// created; there is no promotion path between the two.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. The json tags are omitted
// because these structs are used by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password; plaintext is never persisted.
//  Role         – "patient" or "doctor".
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
