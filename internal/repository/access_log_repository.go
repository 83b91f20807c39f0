package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/emergid/emergency-medical-id/internal/model"
)

// AccessLogRepo appends to and reads the 'access_logs' table. The table is
// append-only: there is no update or delete method on purpose, and nothing
// in the authorization path ever reads it.
type AccessLogRepo struct{ DB *sql.DB }

func NewAccessLogRepo(db *sql.DB) *AccessLogRepo { return &AccessLogRepo{DB: db} }

// Record appends one audit entry for a doctor lookup attempt and returns it
// with its assigned ID and timestamp.
func (r *AccessLogRepo) Record(ctx context.Context, entry model.AccessLog) (model.AccessLog, error) {
	entry.AccessTime = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_logs (public_id, accessed_by, email, outcome, ip_address, user_agent, access_time) VALUES (?,?,?,?,?,?,?)",
		entry.PublicID, entry.AccessedBy, entry.Email, entry.Outcome, entry.IPAddress, entry.UserAgent, entry.AccessTime)
	if err != nil {
		return model.AccessLog{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.AccessLog{}, err
	}
	entry.ID = uint64(id)
	return entry, nil
}

// ListByPublicID returns the newest entries for a public patient ID, most
// recent first. Patients use this to see who looked up their profile.
func (r *AccessLogRepo) ListByPublicID(ctx context.Context, publicID string, limit int) ([]model.AccessLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, public_id, accessed_by, email, outcome, ip_address, user_agent, access_time FROM access_logs WHERE public_id=? ORDER BY access_time DESC, id DESC LIMIT ?",
		publicID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AccessLog
	for rows.Next() {
		var e model.AccessLog
		if err := rows.Scan(&e.ID, &e.PublicID, &e.AccessedBy, &e.Email, &e.Outcome, &e.IPAddress, &e.UserAgent, &e.AccessTime); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByPublicID returns the total number of audit entries for a profile.
func (r *AccessLogRepo) CountByPublicID(ctx context.Context, publicID string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM access_logs WHERE public_id=?", publicID).Scan(&n)
	return n, err
}
