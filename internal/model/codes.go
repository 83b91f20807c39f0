package model

// Machine-readable error kinds returned in the "code" field of every error
// envelope, across handlers and middleware alike. Clients branch on these;
// the "message" field is for humans.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeDuplicateEmail    = "DUPLICATE_EMAIL"
	CodeWeakPassword      = "WEAK_PASSWORD"
	CodeInvalidDoctorCode = "INVALID_DOCTOR_CODE"
	CodeInvalidCreds      = "INVALID_CREDENTIALS"
	CodeAuthRequired      = "AUTHENTICATION_REQUIRED"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeTokenInvalid      = "TOKEN_INVALID"
	CodeForbidden         = "AUTHORIZATION_DENIED"
	CodeNotFound          = "NOT_FOUND"
	CodeRateLimited       = "RATE_LIMITED"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)
