package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

// PublicHandler exposes the unauthenticated browse endpoints: class
// listings and the instructor directory.  These are pure pass-through
// reads with no invariants, which is also why they sit behind the
// response-cache middleware.
type PublicHandler struct {
	ClassRepo      *repository.ClassRepo
	InstructorRepo *repository.InstructorRepo
}

// NewPublicHandler constructs a PublicHandler.  Both repositories must be
// non-nil.
func NewPublicHandler(classRepo *repository.ClassRepo, instructorRepo *repository.InstructorRepo) *PublicHandler {
	if classRepo == nil || instructorRepo == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{ClassRepo: classRepo, InstructorRepo: instructorRepo}
}

// GetClasses handles GET /v1/classes.  It returns every class offering
// ordered by start time.
func (h *PublicHandler) GetClasses(c echo.Context) error {
	classes, err := h.ClassRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load classes"})
	}
	items := make([]classDTO, 0, len(classes))
	for _, cls := range classes {
		items = append(items, toClassDTO(cls))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPopularClasses handles GET /v1/classes/popular.  Popularity follows
// the original platform's ordering: price descending.
func (h *PublicHandler) GetPopularClasses(c echo.Context) error {
	classes, err := h.ClassRepo.ListByPriceDesc(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load classes"})
	}
	items := make([]classDTO, 0, len(classes))
	for _, cls := range classes {
		items = append(items, toClassDTO(cls))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetInstructors handles GET /v1/instructors.  It returns the instructor
// directory.
func (h *PublicHandler) GetInstructors(c echo.Context) error {
	instructors, err := h.InstructorRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load instructors"})
	}
	type instructorDTO struct {
		ID       uint64 `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		PhotoURL string `json:"photo_url,omitempty"`
		Bio      string `json:"bio,omitempty"`
	}
	items := make([]instructorDTO, 0, len(instructors))
	for _, ins := range instructors {
		items = append(items, instructorDTO{
			ID: ins.ID, Name: ins.Name, Email: ins.Email, PhotoURL: ins.PhotoURL, Bio: ins.Bio,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
