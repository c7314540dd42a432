package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/model"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
)

// AdminHandler exposes user administration and class management.  Every
// route is behind JWTAuth + RequireRole("admin").
type AdminHandler struct {
	Users   *repository.UserRepo
	Classes *repository.ClassRepo
}

// NewAdminHandler constructs an AdminHandler.  Both repositories must be
// non-nil.
func NewAdminHandler(users *repository.UserRepo, classes *repository.ClassRepo) *AdminHandler {
	if users == nil || classes == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Classes: classes}
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	items := make([]userPart, 0, len(users))
	for _, u := range users {
		items = append(items, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// PromoteUser handles PATCH /v1/admin/users/:id/admin.  It grants the
// admin role to a user.
func (h *AdminHandler) PromoteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if err := h.Users.PromoteToAdmin(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckAdmin handles GET /v1/admin-status.  It reports whether the
// authenticated caller carries the admin role.  Unlike the /v1/admin
// group this route is reachable by any authenticated user, so frontends
// can toggle their admin UI.
func (h *AdminHandler) CheckAdmin(c echo.Context) error {
	role, _ := c.Get("role").(string)
	return c.JSON(http.StatusOK, echo.Map{"admin": role == "admin"})
}

// CreateClass handles POST /v1/admin/classes.  It registers a new class
// offering with its seat capacity, course tag, room and schedule.
func (h *AdminHandler) CreateClass(c echo.Context) error {
	var body struct {
		Title          string `json:"title"`
		InstructorID   uint64 `json:"instructor_id"`
		PhotoURL       string `json:"photo_url"`
		PriceCents     uint32 `json:"price_cents"`
		AvailableSeats int32  `json:"available_seats"`
		CourseTag      string `json:"course_tag"`
		Room           string `json:"room"`
		StartsAt       string `json:"starts_at"`
		EndsAt         string `json:"ends_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Title == "" || body.CourseTag == "" || body.Room == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, course_tag and room are required"})
	}
	if body.AvailableSeats < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available_seats must not be negative"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	endsAt, err := time.Parse(time.RFC3339, body.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
	}
	if !endsAt.After(startsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	cls := &model.ClassOffering{
		Title:          body.Title,
		InstructorID:   body.InstructorID,
		PhotoURL:       body.PhotoURL,
		PriceCents:     body.PriceCents,
		AvailableSeats: body.AvailableSeats,
		CourseTag:      body.CourseTag,
		Room:           body.Room,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
	}
	if err := h.Classes.Create(c.Request().Context(), cls); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create class"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toClassDTO(*cls)})
}
