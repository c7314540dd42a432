package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
)

// CartRepo provides data access to the cart_entries table: the staging
// area between "intend to enroll" and "paid enrollment".  A UNIQUE index
// on (user_id, class_id) enforces at most one pending entry per pair; the
// explicit existence check keeps the duplicate-add path a friendly no-op
// instead of a constraint error.
type CartRepo struct {
	db *sql.DB
}

// NewCartRepo returns a new CartRepo bound to the provided database.
func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// ExistsTx reports whether a pending cart entry exists for the given
// (user, class) pair.  The read participates in the caller's transaction so
// the subsequent insert cannot race against a concurrent add.
func (r *CartRepo) ExistsTx(ctx context.Context, tx *sql.Tx, userID, classID uint64) (bool, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM cart_entries WHERE user_id = ? AND class_id = ? LIMIT 1`,
		userID, classID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a new cart entry within the provided transaction and
// populates the generated ID and creation time on the given entry.  A
// duplicate-key violation (MySQL error 1062) is mapped to
// ErrCartEntryExists as the backstop for the existence check.
func (r *CartRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.CartEntry) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO cart_entries (user_id, class_id) VALUES (?, ?)`,
		e.UserID, e.ClassID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCartEntryExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM cart_entries WHERE id = ?`, e.ID).Scan(&e.CreatedAt)
}

// GetForUpdateTx loads a cart entry by ID inside the given transaction with
// a row lock.  The payment workflow uses the lock so two concurrent
// payments for the same entry serialize: the loser observes the deleted row
// and fails with ErrCartEntryNotFound, which is what makes consumption
// exactly-once.
func (r *CartRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CartEntry, error) {
	var e model.CartEntry
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, class_id, created_at FROM cart_entries WHERE id = ? FOR UPDATE`,
		id).Scan(&e.ID, &e.UserID, &e.ClassID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteTx removes a cart entry by ID within the provided transaction.  It
// returns ErrCartEntryNotFound when no row was deleted.  Callers decide
// whether the removal releases the seat (cancellation) or converts it into
// an enrollment (payment).
func (r *CartRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM cart_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCartEntryNotFound
	}
	return nil
}

// ListByUser returns all pending cart entries for a user, newest first.
func (r *CartRepo) ListByUser(ctx context.Context, userID uint64) ([]model.CartEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, class_id, created_at FROM cart_entries WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.CartEntry, 0)
	for rows.Next() {
		var e model.CartEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClassID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
