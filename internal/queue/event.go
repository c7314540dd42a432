// Package queue defines message payloads exchanged over the message broker.
package queue

// EnrollmentConfirmedEvent is published after a payment workflow commits.
// It carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type EnrollmentConfirmedEvent struct {
	EnrollmentID uint64 `json:"enrollment_id"`
	UserID       uint64 `json:"user_id"`
	ClassID      uint64 `json:"class_id"`
	ClassTitle   string `json:"class_title"`
	EntryCode    string `json:"entry_code"`
	Room         string `json:"room"`
	StartsAt     string `json:"starts_at"`
	EndsAt       string `json:"ends_at"`
	AmountCents  uint32 `json:"amount_cents"`
	ConfirmedAt  string `json:"confirmed_at"`
}
