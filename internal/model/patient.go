package model

import "time"

// PersonalInfo holds the identity fields of an emergency profile. All four
// fields are required before a profile can be finalized.
type PersonalInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"` // ISO date string, stored as given
	BloodType   string `json:"bloodType"`
}

// MedicalInfo holds the free-form medical lists. Empty lists are valid; a
// profile with no allergies is still complete.
type MedicalInfo struct {
	Allergies   []string `json:"allergies"`
	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`
}

// EmergencyContact is the person to call when the profile is scanned.
// Name and phone are required for finalization.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Patient represents an emergency medical profile as stored in the
// `patients` table. Exactly one profile may exist per user (unique user_id
// constraint). PublicID is the shareable identifier printed on the QR code;
// it is assigned on first save and never changes afterwards. QRImage is a
// derived artifact (base64 PNG data URL) regenerated on every save.
//
// Fields:
//  ID        – primary key identifier of the profile row.
//  UserID    – owning user (unique).
//  PublicID  – shareable identifier, format EMG-<millis>-<suffix>.
//  Personal  – identity fields.
//  Medical   – allergies, conditions, medications.
//  Contact   – emergency contact.
//  QRImage   – base64 PNG data URL encoding the emergency payload.
//  Finalized – true once all required fields are present; only finalized
//              profiles are visible to doctor lookups.
//  UpdatedAt – timestamp of last save.
type Patient struct {
	ID        uint64
	UserID    uint64
	PublicID  string
	Personal  PersonalInfo
	Medical   MedicalInfo
	Contact   EmergencyContact
	QRImage   string
	Finalized bool
	UpdatedAt time.Time
}
