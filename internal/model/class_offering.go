package model

import "time"

// ClassOffering represents a bookable class taught by an instructor
// in a particular room.  It carries the remaining seat capacity, the
// count of paid enrollments and the course tag from which entry codes
// are derived.  Offerings are mutated only through the seat-ledger
// operations and the payment workflow.
//
// Fields:
//
//	ID             – primary key identifier.
//	Title          – class title shown to students.
//	InstructorID   – instructor teaching the class.
//	PhotoURL       – optional cover image for listings.
//	PriceCents     – enrollment price in cents.
//	AvailableSeats – remaining seats; never allowed below zero.
//	EnrolledCount  – number of paid enrollments.
//	CourseTag      – short prefix identifying the class's code family
//	                 (e.g. "BIO"); entry codes are CourseTag + suffix.
//	Room           – room assigned to the class.
//	StartsAt       – when the class begins.
//	EndsAt         – when the class ends (must be after StartsAt).
//	CreatedAt      – creation timestamp.
//	UpdatedAt      – last update timestamp.
type ClassOffering struct {
	ID             uint64    // classes.id
	Title          string    // classes.title
	InstructorID   uint64    // classes.instructor_id
	PhotoURL       string    // classes.photo_url
	PriceCents     uint32    // classes.price_cents
	AvailableSeats int32     // classes.available_seats
	EnrolledCount  uint32    // classes.enrolled_count
	CourseTag      string    // classes.course_tag
	Room           string    // classes.room
	StartsAt       time.Time // classes.starts_at
	EndsAt         time.Time // classes.ends_at
	CreatedAt      time.Time // classes.created_at
	UpdatedAt      time.Time // classes.updated_at
}
