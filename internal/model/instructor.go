package model

import "time"

// Instructor mirrors the 'instructors' table.  Instructors are a
// read-only directory surfaced on the public listing endpoints; they
// are managed out of band.
type Instructor struct {
	ID        uint64    // instructors.id
	Name      string    // instructors.name
	Email     string    // instructors.email
	PhotoURL  string    // instructors.photo_url
	Bio       string    // instructors.bio
	CreatedAt time.Time // instructors.created_at
}
