package model

import "time"

// CartEntry is a provisional, unpaid class selection awaiting payment.
// A seat is reserved when the entry is created and released when the
// entry is removed; paying consumes the entry without releasing the
// seat.  At most one entry exists per (user, class) pair.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – user who selected the class.
//	ClassID   – class the entry points at.
//	CreatedAt – creation timestamp.
type CartEntry struct {
	ID        uint64    // cart_entries.id
	UserID    uint64    // cart_entries.user_id
	ClassID   uint64    // cart_entries.class_id
	CreatedAt time.Time // cart_entries.created_at
}
