package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/emergid/emergency-medical-id/internal/model"
	"github.com/emergid/emergency-medical-id/internal/utils"
)

// PatientRepo is the profile store backed by the 'patients' table. The
// table carries two uniqueness constraints that back the core invariants:
// user_id (at most one profile per user) and public_id (a public patient
// identifier resolves to at most one profile).
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

const patientCols = "id,user_id,public_id,first_name,last_name,date_of_birth,blood_type,allergies,conditions,medications,contact_name,contact_phone,contact_relationship,qr_image,finalized,updated_at"

// GetByUserID returns the caller's own profile, or sql.ErrNoRows when the
// user has not saved one yet.
func (r *PatientRepo) GetByUserID(ctx context.Context, userID uint64) (model.Patient, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+patientCols+" FROM patients WHERE user_id=? LIMIT 1", userID))
}

// GetByPublicID resolves a shareable patient identifier. Draft profiles are
// invisible here: the lookup only matches finalized rows and reports
// ErrPatientNotFound otherwise, so callers cannot distinguish an unknown ID
// from an unfinished profile.
func (r *PatientRepo) GetByPublicID(ctx context.Context, publicID string) (model.Patient, error) {
	p, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+patientCols+" FROM patients WHERE public_id=? AND finalized=? LIMIT 1",
		publicID, true))
	if err == sql.ErrNoRows {
		return model.Patient{}, ErrPatientNotFound
	}
	return p, err
}

// Upsert creates the profile on first save and updates it in place on every
// later one. The public ID is assigned exactly once: an insert uses the
// caller's pre-minted ID (or mints one) and re-saves keep the stored one
// while refreshing all content fields, the QR image and updated_at. The whole
// operation runs in a transaction and leans on the unique user_id
// constraint: if two first-time saves race, the loser's INSERT fails with a
// duplicate error and is retried as an UPDATE against the winner's row.
func (r *PatientRepo) Upsert(ctx context.Context, p model.Patient) (model.Patient, error) {
	allergies, conditions, medications, err := encodeLists(p.Medical)
	if err != nil {
		return model.Patient{}, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Patient{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p.UpdatedAt = time.Now().UTC()

	var existingID uint64
	var publicID string
	err = tx.QueryRowContext(ctx,
		"SELECT id, public_id FROM patients WHERE user_id=? LIMIT 1",
		p.UserID).Scan(&existingID, &publicID)
	switch {
	case err == sql.ErrNoRows:
		if p.PublicID == "" {
			p.PublicID = utils.NewPublicPatientID()
		}
		_, insErr := tx.ExecContext(ctx,
			"INSERT INTO patients (user_id,public_id,first_name,last_name,date_of_birth,blood_type,allergies,conditions,medications,contact_name,contact_phone,contact_relationship,qr_image,finalized,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
			p.UserID, p.PublicID, p.Personal.FirstName, p.Personal.LastName, p.Personal.DateOfBirth, p.Personal.BloodType,
			allergies, conditions, medications,
			p.Contact.Name, p.Contact.Phone, p.Contact.Relationship,
			p.QRImage, p.Finalized, p.UpdatedAt)
		if insErr != nil {
			if !isDuplicate(insErr) {
				return model.Patient{}, insErr
			}
			// Lost the create race: another request inserted this user's
			// row first. Fall back to updating it. The locking read makes
			// the winner's committed row visible even under REPEATABLE READ,
			// where a plain re-read would still see the stale snapshot.
			if err := tx.QueryRowContext(ctx,
				"SELECT id, public_id FROM patients WHERE user_id=? LIMIT 1 FOR UPDATE",
				p.UserID).Scan(&existingID, &publicID); err != nil {
				return model.Patient{}, err
			}
			p.PublicID = publicID
			if err := updatePatientTx(ctx, tx, p, allergies, conditions, medications); err != nil {
				return model.Patient{}, err
			}
		}
	case err != nil:
		return model.Patient{}, err
	default:
		p.PublicID = publicID
		if err := updatePatientTx(ctx, tx, p, allergies, conditions, medications); err != nil {
			return model.Patient{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Patient{}, err
	}
	committed = true
	return r.GetByUserID(ctx, p.UserID)
}

func updatePatientTx(ctx context.Context, tx *sql.Tx, p model.Patient, allergies, conditions, medications string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE patients SET first_name=?,last_name=?,date_of_birth=?,blood_type=?,allergies=?,conditions=?,medications=?,contact_name=?,contact_phone=?,contact_relationship=?,qr_image=?,finalized=?,updated_at=? WHERE user_id=?",
		p.Personal.FirstName, p.Personal.LastName, p.Personal.DateOfBirth, p.Personal.BloodType,
		allergies, conditions, medications,
		p.Contact.Name, p.Contact.Phone, p.Contact.Relationship,
		p.QRImage, p.Finalized, p.UpdatedAt, p.UserID)
	return err
}

// scanOne reads a full patient row, decoding the JSON-encoded list columns.
func (r *PatientRepo) scanOne(row *sql.Row) (model.Patient, error) {
	var p model.Patient
	var allergies, conditions, medications string
	err := row.Scan(&p.ID, &p.UserID, &p.PublicID,
		&p.Personal.FirstName, &p.Personal.LastName, &p.Personal.DateOfBirth, &p.Personal.BloodType,
		&allergies, &conditions, &medications,
		&p.Contact.Name, &p.Contact.Phone, &p.Contact.Relationship,
		&p.QRImage, &p.Finalized, &p.UpdatedAt)
	if err != nil {
		return model.Patient{}, err
	}
	if err := decodeLists(allergies, conditions, medications, &p.Medical); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

// The medical list fields are stored as JSON text. They are opaque to every
// query the service runs, so a serialized column is simpler than three join
// tables.
func encodeLists(m model.MedicalInfo) (allergies, conditions, medications string, err error) {
	enc := func(v []string) (string, error) {
		if v == nil {
			v = []string{}
		}
		b, err := json.Marshal(v)
		return string(b), err
	}
	if allergies, err = enc(m.Allergies); err != nil {
		return
	}
	if conditions, err = enc(m.Conditions); err != nil {
		return
	}
	medications, err = enc(m.Medications)
	return
}

func decodeLists(allergies, conditions, medications string, m *model.MedicalInfo) error {
	if err := json.Unmarshal([]byte(allergies), &m.Allergies); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(conditions), &m.Conditions); err != nil {
		return err
	}
	return json.Unmarshal([]byte(medications), &m.Medications)
}
