// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email address that is
// already taken. Handlers translate this into an HTTP 400 response.
var ErrEmailExists = errors.New("email already exists")

// ErrPatientNotFound is returned when no finalized profile matches a public
// patient identifier. Handlers translate this into an HTTP 404 response.
var ErrPatientNotFound = errors.New("patient not found")
