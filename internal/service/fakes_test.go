package service

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

// fakeTxRunner satisfies TxRunner without a database.  The fakes below do
// not implement rollback, so failure-path tests assert the reported step
// flags and errors rather than store state.
type fakeTxRunner struct{}

func (r *fakeTxRunner) RunTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// fakeStore is an in-memory stand-in for the class, cart and enrollment
// repositories.  Error fields inject faults at specific workflow steps.
type fakeStore struct {
	classes      map[uint64]*model.ClassOffering
	cartEntries  map[uint64]*model.CartEntry
	enrollments  []model.Enrollment
	nextCartID   uint64
	nextEnrollID uint64

	reserveErr error
	releaseErr error
	recordErr  error
	insertErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		classes:     make(map[uint64]*model.ClassOffering),
		cartEntries: make(map[uint64]*model.CartEntry),
	}
}

func (s *fakeStore) addClass(c model.ClassOffering) {
	cp := c
	s.classes[c.ID] = &cp
}

// ----- SeatLedger -----

func (s *fakeStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.ClassOffering, error) {
	c, ok := s.classes[id]
	if !ok {
		return nil, repository.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) ReserveSeatTx(_ context.Context, _ *sql.Tx, id uint64) error {
	if s.reserveErr != nil {
		return s.reserveErr
	}
	c, ok := s.classes[id]
	if !ok {
		return repository.ErrClassNotFound
	}
	if c.AvailableSeats <= 0 {
		return repository.ErrNoSeatsAvailable
	}
	c.AvailableSeats--
	return nil
}

func (s *fakeStore) ReleaseSeatTx(_ context.Context, _ *sql.Tx, id uint64) error {
	if s.releaseErr != nil {
		return s.releaseErr
	}
	c, ok := s.classes[id]
	if !ok {
		return repository.ErrClassNotFound
	}
	c.AvailableSeats++
	return nil
}

func (s *fakeStore) RecordEnrollmentTx(_ context.Context, _ *sql.Tx, id uint64) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	c, ok := s.classes[id]
	if !ok {
		return repository.ErrClassNotFound
	}
	c.EnrolledCount++
	return nil
}

// ----- CartStore -----

func (s *fakeStore) ExistsTx(_ context.Context, _ *sql.Tx, userID, classID uint64) (bool, error) {
	for _, e := range s.cartEntries {
		if e.UserID == userID && e.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateTx(_ context.Context, _ *sql.Tx, e *model.CartEntry) error {
	s.nextCartID++
	e.ID = s.nextCartID
	e.CreatedAt = time.Now().UTC()
	cp := *e
	s.cartEntries[e.ID] = &cp
	return nil
}

func (s *fakeStore) cartGetForUpdate(id uint64) (*model.CartEntry, error) {
	e, ok := s.cartEntries[id]
	if !ok {
		return nil, repository.ErrCartEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) DeleteTx(_ context.Context, _ *sql.Tx, id uint64) error {
	if _, ok := s.cartEntries[id]; !ok {
		return repository.ErrCartEntryNotFound
	}
	delete(s.cartEntries, id)
	return nil
}

// ----- EnrollmentLedger -----

func (s *fakeStore) UsedSuffixesTx(_ context.Context, _ *sql.Tx, tag string) (map[int]struct{}, error) {
	used := make(map[int]struct{})
	for _, e := range s.enrollments {
		if !strings.HasPrefix(e.EntryCode, tag) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(e.EntryCode, tag)); err == nil {
			used[n] = struct{}{}
		}
	}
	return used, nil
}

func (s *fakeStore) InsertTx(_ context.Context, _ *sql.Tx, e *model.Enrollment) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, existing := range s.enrollments {
		if existing.EntryCode == e.EntryCode {
			return repository.ErrDuplicateCode
		}
	}
	s.nextEnrollID++
	e.ID = s.nextEnrollID
	e.CreatedAt = time.Now().UTC()
	s.enrollments = append(s.enrollments, *e)
	return nil
}

// cartStoreAdapter resolves the method-name clash between SeatLedger and
// CartStore: both interfaces declare GetForUpdateTx, but for different row
// types, so fakeStore cannot satisfy CartStore directly.
type cartStoreAdapter struct{ *fakeStore }

func (a cartStoreAdapter) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.CartEntry, error) {
	return a.cartGetForUpdate(id)
}
