// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. For example, ErrNoSeatsAvailable indicates that a guarded
// seat decrement found no remaining capacity, while ErrCartEntryExists
// signals that a duplicate cart add was attempted and should be treated
// as a no-op by the caller.
package repository

import "errors"

// ErrClassNotFound indicates that a class offering was not located in the DB.
var ErrClassNotFound = errors.New("class not found")

// ErrCartEntryNotFound indicates that a cart entry was not located in the DB.
var ErrCartEntryNotFound = errors.New("cart entry not found")

// ErrCartEntryExists is returned when a (user, class) pair already has a
// pending cart entry. Callers should treat this as a duplicate-add signal
// rather than a hard failure.
var ErrCartEntryExists = errors.New("cart entry already exists")

// ErrNoSeatsAvailable is returned when a seat reservation would take the
// available seat count below zero. Handlers should translate this into an
// HTTP 409 response.
var ErrNoSeatsAvailable = errors.New("no seats available")

// ErrDuplicateCode is returned when inserting an enrollment collides with
// the UNIQUE index on entry_code. Under the transactional allocation path
// this should not happen; it exists as the backstop for the
// check-then-act race.
var ErrDuplicateCode = errors.New("entry code already taken")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")
