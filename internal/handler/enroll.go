package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/queue"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/service"
)

// EnrollHandler exposes the payment workflow and the enrollment read
// endpoints.  Payment must already be authorized via the payment-intent
// endpoint before /v1/enroll is called; this handler never talks to the
// gateway.
type EnrollHandler struct {
	Enrollments *service.EnrollmentService
	Ledger      *repository.EnrollmentRepo
	ClassRepo   *repository.ClassRepo
}

// NewEnrollHandler constructs an EnrollHandler.  All dependencies must be
// non-nil.
func NewEnrollHandler(enrollments *service.EnrollmentService, ledger *repository.EnrollmentRepo, classRepo *repository.ClassRepo) *EnrollHandler {
	if enrollments == nil || ledger == nil || classRepo == nil {
		panic("nil dependency passed to NewEnrollHandler")
	}
	return &EnrollHandler{Enrollments: enrollments, Ledger: ledger, ClassRepo: classRepo}
}

// Enroll handles POST /v1/enroll.  The body carries the cart entry being
// paid for, its class and the externally authorized amount.  On success
// the response reports the allocated entry code, room and schedule
// snapshot.  On failure the response names the workflow step that failed
// along with the per-step flags, so a client can tell "nothing changed"
// apart from a genuine partial state (which the single transaction rules
// out, but the surface keeps reporting it).
func (h *EnrollHandler) Enroll(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CartEntryID uint64 `json:"cart_entry_id"`
		ClassID     uint64 `json:"class_id"`
		AmountCents uint32 `json:"amount_cents"`
	}
	if err := c.Bind(&body); err != nil || body.CartEntryID == 0 || body.ClassID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart_entry_id and class_id are required"})
	}

	result, err := h.Enrollments.PayForCartEntry(c.Request().Context(), userID, body.CartEntryID, body.ClassID, body.AmountCents)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, repository.ErrClassNotFound), errors.Is(err, repository.ErrCartEntryNotFound):
			status = http.StatusNotFound
		case errors.Is(err, repository.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, service.ErrCodeSpaceExhausted):
			status = http.StatusConflict
		}
		resp := echo.Map{
			"status": "failed",
			"error":  err.Error(),
			"steps":  result.Steps,
		}
		var wf *service.WorkflowError
		if errors.As(err, &wf) {
			resp["failed_step"] = wf.Step
		}
		return c.JSON(status, resp)
	}

	rec := result.Enrollment
	go h.publishConfirmed(rec.ID, rec.UserID, rec.ClassID, rec.EntryCode, rec.Room, rec.StartsAt, rec.EndsAt, rec.AmountCents)

	return c.JSON(http.StatusCreated, echo.Map{
		"status":         "enrolled",
		"enrollment_id":  rec.ID,
		"entry_code":     rec.EntryCode,
		"room":           rec.Room,
		"schedule_start": rec.StartsAt.UTC().Format(time.RFC3339),
		"schedule_end":   rec.EndsAt.UTC().Format(time.RFC3339),
		"steps":          result.Steps,
	})
}

// publishConfirmed emits the enrollment.confirmed event after a committed
// workflow.  Best effort: the ledger already holds the truth, so publish
// failures are only logged by the publisher.
func (h *EnrollHandler) publishConfirmed(id, userID, classID uint64, code, room string, startsAt, endsAt time.Time, amount uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	title := ""
	if cls, err := h.ClassRepo.GetByID(ctx, classID); err == nil {
		title = cls.Title
	}
	_ = queue.PublishEnrollmentConfirmed(ctx, queue.EnrollmentConfirmedEvent{
		EnrollmentID: id,
		UserID:       userID,
		ClassID:      classID,
		ClassTitle:   title,
		EntryCode:    code,
		Room:         room,
		StartsAt:     startsAt.UTC().Format(time.RFC3339),
		EndsAt:       endsAt.UTC().Format(time.RFC3339),
		AmountCents:  amount,
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

// ListMyEnrollments handles GET /v1/enrollments.  It returns the caller's
// paid enrollments, newest first.
func (h *EnrollHandler) ListMyEnrollments(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	records, err := h.Ledger.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load enrollments"})
	}
	items := make([]enrollmentDTO, 0, len(records))
	for _, e := range records {
		items = append(items, toEnrollmentDTO(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetByCode handles GET /v1/enrollments/code/:code.  It looks up an
// enrollment by its entry code; only the owner may read it.
func (h *EnrollHandler) GetByCode(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	rec, err := h.Ledger.FindByCode(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load enrollment"})
	}
	if rec.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toEnrollmentDTO(*rec)})
}

// ListByClass handles GET /v1/admin/classes/:id/enrollments.  It returns
// the roster of paid enrollments for a class.  Admin only (enforced by
// route middleware).
func (h *EnrollHandler) ListByClass(c echo.Context) error {
	classID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || classID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	ctx := c.Request().Context()
	if _, err := h.ClassRepo.GetByID(ctx, classID); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	records, err := h.Ledger.ListByClass(ctx, classID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load enrollments"})
	}
	type rosterDTO struct {
		enrollmentDTO
		UserID uint64 `json:"user_id"`
	}
	items := make([]rosterDTO, 0, len(records))
	for _, e := range records {
		items = append(items, rosterDTO{enrollmentDTO: toEnrollmentDTO(e), UserID: e.UserID})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
