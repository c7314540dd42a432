package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

// CartService orchestrates cart mutations.  Adding an entry reserves a seat
// and removing one releases it; both pairs run inside a single transaction
// so a crash between the two writes can never leave the seat counter and
// the cart rows disagreeing.
type CartService struct {
	runner TxRunner
	seats  SeatLedger
	cart   CartStore
}

// NewCartService constructs a CartService.  All dependencies must be non-nil.
func NewCartService(runner TxRunner, seats SeatLedger, cart CartStore) *CartService {
	if runner == nil || seats == nil || cart == nil {
		panic("nil dependency passed to NewCartService")
	}
	return &CartService{runner: runner, seats: seats, cart: cart}
}

// AddToCart creates a pending cart entry for (user, class) and reserves a
// seat.  When the pair already has a pending entry, it returns added=false
// with no error and no state change; a duplicate add is a signal, not a
// failure.  ErrClassNotFound and ErrNoSeatsAvailable propagate from the
// seat ledger.
func (s *CartService) AddToCart(ctx context.Context, userID, classID uint64) (*model.CartEntry, bool, error) {
	entry := &model.CartEntry{UserID: userID, ClassID: classID}
	err := s.runner.RunTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.cart.ExistsTx(ctx, tx, userID, classID)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrCartEntryExists
		}
		if err := s.seats.ReserveSeatTx(ctx, tx, classID); err != nil {
			return err
		}
		return s.cart.CreateTx(ctx, tx, entry)
	})
	if errors.Is(err, repository.ErrCartEntryExists) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// RemoveFromCart deletes a pending cart entry owned by the user and
// releases its seat.  It returns ErrCartEntryNotFound when the entry does
// not exist and ErrForbidden when it belongs to someone else.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, entryID uint64) error {
	return s.runner.RunTx(ctx, func(tx *sql.Tx) error {
		entry, err := s.cart.GetForUpdateTx(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.UserID != userID {
			return repository.ErrForbidden
		}
		if err := s.cart.DeleteTx(ctx, tx, entryID); err != nil {
			return err
		}
		return s.seats.ReleaseSeatTx(ctx, tx, entry.ClassID)
	})
}
