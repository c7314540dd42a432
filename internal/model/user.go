package model

import "time"

// User mirrors the 'users' table.  Users authenticate with email and
// password and carry a role consulted by the admin middleware.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lower-cased)
	Name         string    // users.name
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role ("student" | "admin")
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
