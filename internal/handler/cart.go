package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/service"
)

// CartHandler exposes the cart endpoints.  Adding and removing entries go
// through CartService so each operation's cart row and seat counter move
// in one transaction.
type CartHandler struct {
	Cart      *service.CartService
	CartRepo  *repository.CartRepo
	ClassRepo *repository.ClassRepo
}

// NewCartHandler constructs a CartHandler.  All dependencies must be non-nil.
func NewCartHandler(cart *service.CartService, cartRepo *repository.CartRepo, classRepo *repository.ClassRepo) *CartHandler {
	if cart == nil || cartRepo == nil || classRepo == nil {
		panic("nil dependency passed to NewCartHandler")
	}
	return &CartHandler{Cart: cart, CartRepo: cartRepo, ClassRepo: classRepo}
}

// AddToCart handles POST /v1/cart.  The body must contain a class_id.  A
// repeat add for the same class returns 200 with added=false and changes
// nothing; a first add reserves a seat and returns 201.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ClassID uint64 `json:"class_id"`
	}
	if err := c.Bind(&body); err != nil || body.ClassID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id is required"})
	}

	entry, added, err := h.Cart.AddToCart(c.Request().Context(), userID, body.ClassID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClassNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		case errors.Is(err, repository.ErrNoSeatsAvailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no seats available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add to cart"})
	}
	if !added {
		return c.JSON(http.StatusOK, echo.Map{"added": false, "message": "already added"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"added":         true,
		"cart_entry_id": entry.ID,
		"class_id":      entry.ClassID,
		"created_at":    entry.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ListCart handles GET /v1/cart.  It returns the user's pending entries
// together with the referenced class details.
func (h *CartHandler) ListCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	entries, err := h.CartRepo.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}
	type cartItemDTO struct {
		ID        uint64    `json:"id"`
		CreatedAt string    `json:"created_at"`
		Class     *classDTO `json:"class,omitempty"`
	}
	items := make([]cartItemDTO, 0, len(entries))
	for _, e := range entries {
		item := cartItemDTO{ID: e.ID, CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339)}
		// A class deleted after the add leaves the entry without details.
		if cls, err := h.ClassRepo.GetByID(ctx, e.ClassID); err == nil {
			dto := toClassDTO(*cls)
			item.Class = &dto
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// RemoveFromCart handles DELETE /v1/cart/:id.  It deletes the entry and
// releases its seat.  Returns 204 on success, 404 when the entry does not
// exist and 403 when it belongs to another user.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || entryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart entry id"})
	}

	if err := h.Cart.RemoveFromCart(c.Request().Context(), userID, entryID); err != nil {
		switch {
		case errors.Is(err, repository.ErrCartEntryNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart entry not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove from cart"})
	}
	return c.NoContent(http.StatusNoContent)
}
