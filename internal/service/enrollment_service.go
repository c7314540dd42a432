package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

// Workflow step names reported in EnrollmentSteps and WorkflowError.
const (
	StepLoadClass     = "load_class"
	StepLoadCartEntry = "load_cart_entry"
	StepAllocateCode  = "allocate_code"
	StepConsumeCart   = "consume_cart"
	StepRecordCount   = "record_count"
	StepInsertRecord  = "insert_record"
)

// WorkflowError reports which sub-step of the payment workflow failed.
// Because the whole workflow runs in one transaction, a WorkflowError
// always means the store was rolled back to its pre-workflow state; the
// step name tells the caller how far it got before the rollback.
type WorkflowError struct {
	Step string
	Err  error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("enrollment workflow failed at %s: %v", e.Step, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// EnrollmentSteps is the composite per-step outcome of a payment workflow
// run.  Each flag flips to true when the corresponding sub-step completed
// inside the transaction, so tests and callers can observe exactly where a
// failed run stopped.
type EnrollmentSteps struct {
	CodeAllocated  bool `json:"code_allocated"`
	CartConsumed   bool `json:"cart_consumed"`
	CountRecorded  bool `json:"count_recorded"`
	RecordInserted bool `json:"record_inserted"`
}

// EnrollmentResult is returned by PayForCartEntry.  On success Enrollment
// carries the inserted record; on failure it is nil and Steps shows the
// partial progress that was rolled back.
type EnrollmentResult struct {
	Enrollment *model.Enrollment
	Steps      EnrollmentSteps
}

// EnrollmentService is the payment workflow orchestrator.  It converts a
// pending cart entry into a paid enrollment record: allocate a unique entry
// code, consume the cart entry, bump the class's enrolled count and append
// the ledger record, all inside one transaction, so either every mutation
// lands or none do.  Charge authorization is a precondition handled by the
// payment collaborator before this service is invoked.
type EnrollmentService struct {
	runner    TxRunner
	seats     SeatLedger
	cart      CartStore
	ledger    EnrollmentLedger
	allocator *CodeAllocator
}

// NewEnrollmentService constructs an EnrollmentService.  All dependencies
// must be non-nil.
func NewEnrollmentService(runner TxRunner, seats SeatLedger, cart CartStore, ledger EnrollmentLedger, allocator *CodeAllocator) *EnrollmentService {
	if runner == nil || seats == nil || cart == nil || ledger == nil || allocator == nil {
		panic("nil dependency passed to NewEnrollmentService")
	}
	return &EnrollmentService{runner: runner, seats: seats, cart: cart, ledger: ledger, allocator: allocator}
}

// PayForCartEntry runs the enrollment workflow for an externally
// authorized payment.  The cart entry must exist, belong to userID and
// reference classID.  Room and schedule are snapshotted from the offering
// at this instant; later edits to the offering do not touch the record.
//
// Failure modes: repository.ErrClassNotFound / ErrCartEntryNotFound (404),
// repository.ErrForbidden (entry owned by someone else),
// ErrCodeSpaceExhausted (the tag's 21-code space is saturated).  Every
// error is wrapped in *WorkflowError naming the failing step, and the
// returned EnrollmentResult still carries the step flags of the rolled-back
// attempt.
func (s *EnrollmentService) PayForCartEntry(ctx context.Context, userID, cartEntryID, classID uint64, amountCents uint32) (*EnrollmentResult, error) {
	result := &EnrollmentResult{}
	err := s.runner.RunTx(ctx, func(tx *sql.Tx) error {
		class, err := s.seats.GetForUpdateTx(ctx, tx, classID)
		if err != nil {
			return &WorkflowError{Step: StepLoadClass, Err: err}
		}

		entry, err := s.cart.GetForUpdateTx(ctx, tx, cartEntryID)
		if err != nil {
			return &WorkflowError{Step: StepLoadCartEntry, Err: err}
		}
		if entry.UserID != userID {
			return &WorkflowError{Step: StepLoadCartEntry, Err: repository.ErrForbidden}
		}
		if entry.ClassID != classID {
			return &WorkflowError{Step: StepLoadCartEntry, Err: repository.ErrCartEntryNotFound}
		}

		// The used-suffix read locks the tag's ledger rows, so a concurrent
		// workflow on the same tag waits here instead of observing a stale
		// free set.
		used, err := s.ledger.UsedSuffixesTx(ctx, tx, class.CourseTag)
		if err != nil {
			return &WorkflowError{Step: StepAllocateCode, Err: err}
		}
		code, err := s.allocator.Allocate(class.CourseTag, used)
		if err != nil {
			return &WorkflowError{Step: StepAllocateCode, Err: err}
		}
		result.Steps.CodeAllocated = true

		if err := s.cart.DeleteTx(ctx, tx, cartEntryID); err != nil {
			return &WorkflowError{Step: StepConsumeCart, Err: err}
		}
		result.Steps.CartConsumed = true

		if err := s.seats.RecordEnrollmentTx(ctx, tx, classID); err != nil {
			return &WorkflowError{Step: StepRecordCount, Err: err}
		}
		result.Steps.CountRecorded = true

		rec := &model.Enrollment{
			UserID:      userID,
			ClassID:     classID,
			EntryCode:   code,
			Room:        class.Room,
			StartsAt:    class.StartsAt,
			EndsAt:      class.EndsAt,
			AmountCents: amountCents,
		}
		if err := s.ledger.InsertTx(ctx, tx, rec); err != nil {
			return &WorkflowError{Step: StepInsertRecord, Err: err}
		}
		result.Steps.RecordInserted = true
		result.Enrollment = rec
		return nil
	})
	if err != nil {
		// The transaction rolled back: report the step flags for
		// observability, but no enrollment exists.
		result.Enrollment = nil
		return result, err
	}
	return result, nil
}
