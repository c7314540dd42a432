package model

import "time"

// Enrollment is the durable record of a completed, paid enrollment.
// Room and schedule are copied from the class offering at payment
// time so later changes to the offering never retroactively alter an
// already-paid enrollment.  Records are append-only: they are never
// mutated or deleted in normal operation.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – user who paid for the class.
//	ClassID     – class the enrollment belongs to.
//	EntryCode   – unique human-facing code (course tag + suffix).
//	Room        – room snapshot taken at payment time.
//	StartsAt    – schedule start snapshot.
//	EndsAt      – schedule end snapshot.
//	AmountCents – amount paid in cents.
//	CreatedAt   – creation timestamp.
type Enrollment struct {
	ID          uint64    // enrollments.id
	UserID      uint64    // enrollments.user_id
	ClassID     uint64    // enrollments.class_id
	EntryCode   string    // enrollments.entry_code (UNIQUE)
	Room        string    // enrollments.room
	StartsAt    time.Time // enrollments.starts_at
	EndsAt      time.Time // enrollments.ends_at
	AmountCents uint32    // enrollments.amount_cents
	CreatedAt   time.Time // enrollments.created_at
}
