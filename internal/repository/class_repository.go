// Package repository contains data access logic for class offerings. This
// file implements the seat ledger: per-class atomic counter updates for
// available seats and enrolled count, plus the listing queries used by the
// public browse endpoints. All counter mutations are single-row UPDATEs so
// concurrent requests for different classes never contend, and concurrent
// requests for the same class serialize on the row.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
)

// ClassRepo manages persistence for class offerings and their seat counters.
type ClassRepo struct {
	db *sql.DB
}

// NewClassRepo returns a new ClassRepo bound to the given database.
func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ClassRepo) DB() *sql.DB { return r.db }

const classCols = `id, title, instructor_id, photo_url, price_cents, available_seats, enrolled_count, course_tag, room, starts_at, ends_at, created_at, updated_at`

func scanClass(row *sql.Row) (*model.ClassOffering, error) {
	var c model.ClassOffering
	err := row.Scan(
		&c.ID, &c.Title, &c.InstructorID, &c.PhotoURL, &c.PriceCents,
		&c.AvailableSeats, &c.EnrolledCount, &c.CourseTag, &c.Room,
		&c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID loads a class offering by its primary key.  It returns
// ErrClassNotFound when no row exists.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (*model.ClassOffering, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+classCols+` FROM classes WHERE id = ?`, id)
	return scanClass(row)
}

// GetForUpdateTx loads a class offering inside the given transaction with a
// row lock (SELECT ... FOR UPDATE).  The payment workflow uses this to pin
// the offering while it snapshots room and schedule, so a concurrent admin
// edit cannot interleave with the snapshot.
func (r *ClassRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ClassOffering, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+classCols+` FROM classes WHERE id = ? FOR UPDATE`, id)
	return scanClass(row)
}

// ReserveSeatTx decrements available_seats by one inside the given
// transaction.  The UPDATE is guarded by available_seats > 0 so the counter
// can never go negative; when the guard rejects the update on an existing
// class, ErrNoSeatsAvailable is returned.  A missing class yields
// ErrClassNotFound.
func (r *ClassRepo) ReserveSeatTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE classes SET available_seats = available_seats - 1 WHERE id = ? AND available_seats > 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// Distinguish "class absent" from "class full".
	var exists uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM classes WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrClassNotFound
	}
	if err != nil {
		return err
	}
	return ErrNoSeatsAvailable
}

// ReleaseSeatTx increments available_seats by one inside the given
// transaction.  It returns ErrClassNotFound when the class does not exist.
func (r *ClassRepo) ReleaseSeatTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE classes SET available_seats = available_seats + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}

// RecordEnrollmentTx increments enrolled_count by one inside the given
// transaction.  The seat itself was already reserved at cart-add time, so
// only the paid-enrollment counter moves here.
func (r *ClassRepo) RecordEnrollmentTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE classes SET enrolled_count = enrolled_count + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}

// List returns all class offerings ordered by start time.
func (r *ClassRepo) List(ctx context.Context) ([]model.ClassOffering, error) {
	return r.list(ctx, `SELECT `+classCols+` FROM classes ORDER BY starts_at, id`)
}

// ListByPriceDesc returns all class offerings ordered by price descending.
// This backs the "popular classes" listing on the public API.
func (r *ClassRepo) ListByPriceDesc(ctx context.Context) ([]model.ClassOffering, error) {
	return r.list(ctx, `SELECT `+classCols+` FROM classes ORDER BY price_cents DESC, id`)
}

func (r *ClassRepo) list(ctx context.Context, query string) ([]model.ClassOffering, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ClassOffering, 0)
	for rows.Next() {
		var c model.ClassOffering
		if err := rows.Scan(
			&c.ID, &c.Title, &c.InstructorID, &c.PhotoURL, &c.PriceCents,
			&c.AvailableSeats, &c.EnrolledCount, &c.CourseTag, &c.Room,
			&c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new class offering and populates the generated ID and
// DB-default fields on the provided struct.  Used by the admin endpoint.
func (r *ClassRepo) Create(ctx context.Context, c *model.ClassOffering) error {
	const q = `INSERT INTO classes (title, instructor_id, photo_url, price_cents, available_seats, enrolled_count, course_tag, room, starts_at, ends_at)
	           VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		c.Title, c.InstructorID, c.PhotoURL, c.PriceCents, c.AvailableSeats,
		c.CourseTag, c.Room, c.StartsAt.UTC(), c.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	row := r.db.QueryRowContext(ctx, `SELECT `+classCols+` FROM classes WHERE id = ?`, c.ID)
	got, err := scanClass(row)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}
