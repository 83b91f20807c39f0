// Package queue defines message payloads exchanged over the message broker.
package queue

// AccessRecordedEvent is published after an audit entry for a doctor lookup
// has been committed. It carries enough information for downstream
// consumers to log or alert without querying the primary database. The
// database row, not this event, is the authoritative audit record.
type AccessRecordedEvent struct {
	PatientID       string `json:"patient_id"`
	AccessedByID    uint64 `json:"accessed_by_id"`
	AccessedByEmail string `json:"accessed_by_email"`
	Outcome         string `json:"outcome"`
	IPAddress       string `json:"ip_address"`
	UserAgent       string `json:"user_agent"`
	AccessTime      string `json:"access_time"`
}
