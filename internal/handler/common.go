package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT claims decode numbers as float64, so several source types
// are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// classDTO is the public shape of a class offering.  Timestamps are
// rendered as RFC3339 UTC strings.
type classDTO struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	InstructorID   uint64 `json:"instructor_id"`
	PhotoURL       string `json:"photo_url,omitempty"`
	PriceCents     uint32 `json:"price_cents"`
	AvailableSeats int32  `json:"available_seats"`
	EnrolledCount  uint32 `json:"enrolled_count"`
	CourseTag      string `json:"course_tag"`
	Room           string `json:"room"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
}

func toClassDTO(c model.ClassOffering) classDTO {
	return classDTO{
		ID:             c.ID,
		Title:          c.Title,
		InstructorID:   c.InstructorID,
		PhotoURL:       c.PhotoURL,
		PriceCents:     c.PriceCents,
		AvailableSeats: c.AvailableSeats,
		EnrolledCount:  c.EnrolledCount,
		CourseTag:      c.CourseTag,
		Room:           c.Room,
		StartsAt:       c.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:         c.EndsAt.UTC().Format(time.RFC3339),
	}
}

// enrollmentDTO is the public shape of an enrollment record.
type enrollmentDTO struct {
	ID          uint64 `json:"id"`
	ClassID     uint64 `json:"class_id"`
	EntryCode   string `json:"entry_code"`
	Room        string `json:"room"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	AmountCents uint32 `json:"amount_cents"`
	CreatedAt   string `json:"created_at"`
}

func toEnrollmentDTO(e model.Enrollment) enrollmentDTO {
	return enrollmentDTO{
		ID:          e.ID,
		ClassID:     e.ClassID,
		EntryCode:   e.EntryCode,
		Room:        e.Room,
		StartsAt:    e.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:      e.EndsAt.UTC().Format(time.RFC3339),
		AmountCents: e.AmountCents,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
