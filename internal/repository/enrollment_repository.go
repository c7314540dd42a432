package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
)

// EnrollmentRepo provides access to the enrollments table: the append-only
// ledger of completed, paid enrollments.  There is deliberately no update
// or delete method; once written, a record only ever serves reads.  The
// entry_code column carries a UNIQUE index which backs the system-wide
// code-uniqueness invariant.
type EnrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo returns a new EnrollmentRepo bound to the given database.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

const enrollmentCols = `id, user_id, class_id, entry_code, room, starts_at, ends_at, amount_cents, created_at`

// InsertTx appends an enrollment record within the provided transaction and
// populates the generated ID and creation time.  A duplicate-key violation
// on entry_code (MySQL error 1062) is mapped to ErrDuplicateCode; with
// allocation running under the same transaction's row locks this is a
// should-not-happen backstop rather than an expected path.
func (r *EnrollmentRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.Enrollment) error {
	const q = `INSERT INTO enrollments (user_id, class_id, entry_code, room, starts_at, ends_at, amount_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		e.UserID, e.ClassID, e.EntryCode, e.Room, e.StartsAt.UTC(), e.EndsAt.UTC(), e.AmountCents)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateCode
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM enrollments WHERE id = ?`, e.ID).Scan(&e.CreatedAt)
}

// UsedSuffixesTx returns the set of numeric suffixes already allocated for
// the given course tag.  The rows are read FOR UPDATE inside the caller's
// transaction so two concurrent workflows for the same tag cannot both
// observe a suffix as free.  This closes the check-then-act race that a
// plain read-then-insert allocation would have.
func (r *EnrollmentRepo) UsedSuffixesTx(ctx context.Context, tx *sql.Tx, tag string) (map[int]struct{}, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT entry_code FROM enrollments WHERE entry_code LIKE CONCAT(?, '%') FOR UPDATE`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	used := make(map[int]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		// Codes are tag + decimal suffix; skip anything that does not parse
		// (a longer tag sharing this one as a prefix, e.g. "BIO" vs "BIOL").
		n, err := strconv.Atoi(strings.TrimPrefix(code, tag))
		if err != nil {
			continue
		}
		used[n] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return used, nil
}

// FindByCode returns the enrollment carrying the given entry code, or
// sql.ErrNoRows when the code has never been issued.
func (r *EnrollmentRepo) FindByCode(ctx context.Context, code string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.QueryRowContext(ctx,
		`SELECT `+enrollmentCols+` FROM enrollments WHERE entry_code = ?`, code).Scan(
		&e.ID, &e.UserID, &e.ClassID, &e.EntryCode, &e.Room,
		&e.StartsAt, &e.EndsAt, &e.AmountCents, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser returns all enrollments for a user, newest first.
func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Enrollment, error) {
	return r.list(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// ListByClass returns all enrollments for a class, newest first.  Used by
// the admin roster endpoint.
func (r *EnrollmentRepo) ListByClass(ctx context.Context, classID uint64) ([]model.Enrollment, error) {
	return r.list(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE class_id = ? ORDER BY created_at DESC, id DESC`, classID)
}

func (r *EnrollmentRepo) list(ctx context.Context, query string, arg any) ([]model.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Enrollment, 0)
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.ClassID, &e.EntryCode, &e.Room,
			&e.StartsAt, &e.EndsAt, &e.AmountCents, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// IsCodeFree reports whether an entry code is unissued.  It exists for
// reporting paths outside the workflow transaction; allocation itself must
// go through UsedSuffixesTx.
func (r *EnrollmentRepo) IsCodeFree(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
