package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

func newEnrollmentFixture(t *testing.T) (*EnrollmentService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewEnrollmentService(&fakeTxRunner{}, store, cartStoreAdapter{store}, store, NewCodeAllocator())
	return svc, store
}

func seedBiologyClass(store *fakeStore) {
	store.addClass(model.ClassOffering{
		ID:             7,
		Title:          "Marine Biology",
		CourseTag:      "BIO",
		Room:           "Lab 2",
		PriceCents:     4500,
		AvailableSeats: 9,
		EnrolledCount:  3,
		StartsAt:       time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:         time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC),
	})
}

func seedCartEntry(store *fakeStore, userID, classID uint64) uint64 {
	store.nextCartID++
	id := store.nextCartID
	store.cartEntries[id] = &model.CartEntry{ID: id, UserID: userID, ClassID: classID, CreatedAt: time.Now().UTC()}
	return id
}

func TestPayForCartEntrySuccess(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	entryID := seedCartEntry(store, 42, 7)

	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	require.NoError(t, err)
	require.NotNil(t, res.Enrollment)

	rec := res.Enrollment
	assert.Equal(t, uint64(42), rec.UserID)
	assert.Equal(t, uint64(7), rec.ClassID)
	assert.Equal(t, uint32(4500), rec.AmountCents)
	assert.Equal(t, "Lab 2", rec.Room)

	require.True(t, strings.HasPrefix(rec.EntryCode, "BIO"))
	suffix, convErr := strconv.Atoi(strings.TrimPrefix(rec.EntryCode, "BIO"))
	require.NoError(t, convErr)
	assert.GreaterOrEqual(t, suffix, 100)
	assert.LessOrEqual(t, suffix, 120)

	assert.Equal(t, EnrollmentSteps{
		CodeAllocated:  true,
		CartConsumed:   true,
		CountRecorded:  true,
		RecordInserted: true,
	}, res.Steps)

	// The cart entry is gone, the enrolled count moved, and available
	// seats did not: the seat was already reserved at add-to-cart time.
	assert.Empty(t, store.cartEntries)
	assert.Equal(t, uint32(4), store.classes[7].EnrolledCount)
	assert.Equal(t, int32(9), store.classes[7].AvailableSeats)
}

func TestAddThenPayOnLastSeat(t *testing.T) {
	store := newFakeStore()
	carts := NewCartService(&fakeTxRunner{}, store, cartStoreAdapter{store})
	enrolls := NewEnrollmentService(&fakeTxRunner{}, store, cartStoreAdapter{store}, store, NewCodeAllocator())

	store.addClass(model.ClassOffering{
		ID:             7,
		Title:          "Marine Biology",
		CourseTag:      "BIO",
		Room:           "Lab 2",
		AvailableSeats: 1,
	})

	entry, added, err := carts.AddToCart(context.Background(), 42, 7)
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, int32(0), store.classes[7].AvailableSeats)

	res, err := enrolls.PayForCartEntry(context.Background(), 42, entry.ID, 7, 4500)
	require.NoError(t, err)
	assert.Regexp(t, `^BIO1(0\d|1\d|20)$`, res.Enrollment.EntryCode)
	assert.Empty(t, store.cartEntries)
	assert.Equal(t, uint32(1), store.classes[7].EnrolledCount)
	assert.Equal(t, int32(0), store.classes[7].AvailableSeats)
}

func TestPayForCartEntrySnapshotsSchedule(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	entryID := seedCartEntry(store, 42, 7)

	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	require.NoError(t, err)

	// Reschedule the offering after payment; the record keeps the values
	// in effect when the payment landed.
	store.classes[7].Room = "Lab 9"
	store.classes[7].StartsAt = store.classes[7].StartsAt.Add(24 * time.Hour)

	assert.Equal(t, "Lab 2", res.Enrollment.Room)
	assert.Equal(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), res.Enrollment.StartsAt)
	assert.Equal(t, "Lab 2", store.enrollments[0].Room)
}

func TestPayForCartEntryCodesUniquePerTag(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)

	seen := make(map[string]struct{})
	for i := 0; i < CodeSpaceSize; i++ {
		userID := uint64(100 + i)
		entryID := seedCartEntry(store, userID, 7)
		res, err := svc.PayForCartEntry(context.Background(), userID, entryID, 7, 4500)
		require.NoError(t, err)
		_, dup := seen[res.Enrollment.EntryCode]
		require.False(t, dup, "code %q issued twice", res.Enrollment.EntryCode)
		seen[res.Enrollment.EntryCode] = struct{}{}
	}

	// The 22nd payment on the same tag finds no free suffix.
	entryID := seedCartEntry(store, 999, 7)
	res, err := svc.PayForCartEntry(context.Background(), 999, entryID, 7, 4500)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Nil(t, res.Enrollment)

	var wErr *WorkflowError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, StepAllocateCode, wErr.Step)
}

func TestPayForCartEntryClassNotFound(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	entryID := seedCartEntry(store, 42, 7)

	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	assert.ErrorIs(t, err, repository.ErrClassNotFound)
	assert.Nil(t, res.Enrollment)

	var wErr *WorkflowError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, StepLoadClass, wErr.Step)
}

func TestPayForCartEntryWrongOwner(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	entryID := seedCartEntry(store, 42, 7)

	res, err := svc.PayForCartEntry(context.Background(), 99, entryID, 7, 4500)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Nil(t, res.Enrollment)

	// The entry survives for its real owner.
	assert.Len(t, store.cartEntries, 1)
}

func TestPayForCartEntryClassMismatch(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	store.addClass(model.ClassOffering{ID: 8, CourseTag: "CHEM", Room: "Lab 1", AvailableSeats: 5})
	entryID := seedCartEntry(store, 42, 8)

	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	assert.ErrorIs(t, err, repository.ErrCartEntryNotFound)
	assert.Nil(t, res.Enrollment)
}

func TestPayForCartEntryConsumedExactlyOnce(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	entryID := seedCartEntry(store, 42, 7)

	_, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	require.NoError(t, err)

	// A second payment against the same entry fails cleanly instead of
	// producing a second enrollment.
	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	assert.ErrorIs(t, err, repository.ErrCartEntryNotFound)
	assert.Nil(t, res.Enrollment)
	assert.Len(t, store.enrollments, 1)
	assert.Equal(t, uint32(4), store.classes[7].EnrolledCount)
}

func TestPayForCartEntryFaultAtRecordCount(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	entryID := seedCartEntry(store, 42, 7)

	boom := errors.New("connection reset")
	store.recordErr = boom

	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res.Enrollment)

	var wErr *WorkflowError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, StepRecordCount, wErr.Step)

	// Step flags still report how far the rolled-back attempt got.
	assert.True(t, res.Steps.CodeAllocated)
	assert.True(t, res.Steps.CartConsumed)
	assert.False(t, res.Steps.CountRecorded)
	assert.False(t, res.Steps.RecordInserted)
	assert.Empty(t, store.enrollments)
}

func TestPayForCartEntryFaultAtInsert(t *testing.T) {
	svc, store := newEnrollmentFixture(t)
	seedBiologyClass(store)
	entryID := seedCartEntry(store, 42, 7)

	store.insertErr = repository.ErrDuplicateCode

	res, err := svc.PayForCartEntry(context.Background(), 42, entryID, 7, 4500)
	assert.ErrorIs(t, err, repository.ErrDuplicateCode)
	assert.Nil(t, res.Enrollment)

	var wErr *WorkflowError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, StepInsertRecord, wErr.Step)
	assert.Empty(t, store.enrollments)
}
