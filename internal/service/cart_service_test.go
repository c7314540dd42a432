package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

func newCartFixture(t *testing.T) (*CartService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewCartService(&fakeTxRunner{}, store, cartStoreAdapter{store})
	return svc, store
}

func seedHistoryClass(store *fakeStore, seats int32) {
	store.addClass(model.ClassOffering{
		ID:             3,
		Title:          "World History",
		CourseTag:      "HIS",
		Room:           "Room 12",
		AvailableSeats: seats,
		StartsAt:       time.Date(2026, 7, 6, 10, 0, 0, 0, time.UTC),
		EndsAt:         time.Date(2026, 7, 6, 12, 0, 0, 0, time.UTC),
	})
}

func TestAddToCartReservesSeat(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 5)

	entry, added, err := svc.AddToCart(context.Background(), 42, 3)
	require.NoError(t, err)
	require.True(t, added)
	require.NotNil(t, entry)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, uint64(42), entry.UserID)
	assert.Equal(t, uint64(3), entry.ClassID)

	assert.Equal(t, int32(4), store.classes[3].AvailableSeats)
	assert.Len(t, store.cartEntries, 1)
}

func TestAddToCartDuplicateIsIdempotent(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 5)

	_, added, err := svc.AddToCart(context.Background(), 42, 3)
	require.NoError(t, err)
	require.True(t, added)

	// The second add is a no-op signal, not an error, and holds no
	// additional seat.
	entry, added, err := svc.AddToCart(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Nil(t, entry)
	assert.Equal(t, int32(4), store.classes[3].AvailableSeats)
	assert.Len(t, store.cartEntries, 1)
}

func TestAddToCartClassNotFound(t *testing.T) {
	svc, store := newCartFixture(t)

	entry, added, err := svc.AddToCart(context.Background(), 42, 99)
	assert.ErrorIs(t, err, repository.ErrClassNotFound)
	assert.False(t, added)
	assert.Nil(t, entry)
	assert.Empty(t, store.cartEntries)
}

func TestAddToCartLastSeatThenFull(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 1)

	_, added, err := svc.AddToCart(context.Background(), 42, 3)
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, int32(0), store.classes[3].AvailableSeats)

	// A different user racing for the seat after it is gone gets the
	// capacity error and leaves no cart entry behind.
	entry, added, err := svc.AddToCart(context.Background(), 43, 3)
	assert.ErrorIs(t, err, repository.ErrNoSeatsAvailable)
	assert.False(t, added)
	assert.Nil(t, entry)
	assert.Len(t, store.cartEntries, 1)
	assert.Equal(t, int32(0), store.classes[3].AvailableSeats)
}

func TestSeatArithmeticAcrossAddsAndRemovals(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 10)

	// Six users add the class, then two of them back out.  The counter
	// must land on initial minus adds plus removals.
	var entryIDs []uint64
	for u := uint64(1); u <= 6; u++ {
		entry, added, err := svc.AddToCart(context.Background(), u, 3)
		require.NoError(t, err)
		require.True(t, added)
		entryIDs = append(entryIDs, entry.ID)
	}
	require.NoError(t, svc.RemoveFromCart(context.Background(), 1, entryIDs[0]))
	require.NoError(t, svc.RemoveFromCart(context.Background(), 2, entryIDs[1]))

	assert.Equal(t, int32(10-6+2), store.classes[3].AvailableSeats)
	assert.Len(t, store.cartEntries, 4)
}

func TestRemoveFromCartReleasesSeat(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 5)

	entry, _, err := svc.AddToCart(context.Background(), 42, 3)
	require.NoError(t, err)
	require.Equal(t, int32(4), store.classes[3].AvailableSeats)

	require.NoError(t, svc.RemoveFromCart(context.Background(), 42, entry.ID))
	assert.Empty(t, store.cartEntries)
	assert.Equal(t, int32(5), store.classes[3].AvailableSeats)
}

func TestRemoveFromCartWrongOwner(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 5)

	entry, _, err := svc.AddToCart(context.Background(), 42, 3)
	require.NoError(t, err)

	err = svc.RemoveFromCart(context.Background(), 99, entry.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Len(t, store.cartEntries, 1)
	assert.Equal(t, int32(4), store.classes[3].AvailableSeats)
}

func TestRemoveFromCartMissingEntry(t *testing.T) {
	svc, store := newCartFixture(t)
	seedHistoryClass(store, 5)

	err := svc.RemoveFromCart(context.Background(), 42, 777)
	assert.ErrorIs(t, err, repository.ErrCartEntryNotFound)
	assert.Equal(t, int32(5), store.classes[3].AvailableSeats)
}
