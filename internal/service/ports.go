// Package service implements the enrollment domain workflows on top of the
// repository layer.  The interfaces below name exactly the repository
// surface each workflow touches; the concrete repositories satisfy them,
// and tests substitute in-memory fakes.  All mutating methods take the
// *sql.Tx of the surrounding workflow transaction.
package service

import (
	"context"
	"database/sql"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
)

// SeatLedger tracks per-class seat capacity and the paid-enrollment count.
type SeatLedger interface {
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ClassOffering, error)
	ReserveSeatTx(ctx context.Context, tx *sql.Tx, id uint64) error
	ReleaseSeatTx(ctx context.Context, tx *sql.Tx, id uint64) error
	RecordEnrollmentTx(ctx context.Context, tx *sql.Tx, id uint64) error
}

// CartStore holds pending, unpaid class selections per user.
type CartStore interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, userID, classID uint64) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, e *model.CartEntry) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CartEntry, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
}

// EnrollmentLedger is the append-only record of paid enrollments and the
// source of truth for allocated entry codes.
type EnrollmentLedger interface {
	UsedSuffixesTx(ctx context.Context, tx *sql.Tx, tag string) (map[int]struct{}, error)
	InsertTx(ctx context.Context, tx *sql.Tx, e *model.Enrollment) error
}

// TxRunner executes a function inside a database transaction, committing on
// nil and rolling back on error.  Workflows depend on this instead of
// *sql.DB directly so tests can run them without a database.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBTxRunner is the production TxRunner backed by a *sql.DB.
type DBTxRunner struct {
	DB *sql.DB
}

// RunTx begins a transaction, runs fn and commits; any error from fn rolls
// the transaction back and is returned unchanged.
func (r *DBTxRunner) RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
