package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/payment"
)

// PaymentHandler exposes the payment-intent endpoint.  The returned client
// secret lets the frontend complete the charge directly with the gateway;
// the backend never sees card details and never verifies the charge; the
// enrollment workflow takes authorization as a given.
type PaymentHandler struct {
	Gateway *payment.Client
}

// NewPaymentHandler constructs a PaymentHandler.  The gateway client must
// be non-nil.
func NewPaymentHandler(gateway *payment.Client) *PaymentHandler {
	if gateway == nil {
		panic("nil gateway passed to NewPaymentHandler")
	}
	return &PaymentHandler{Gateway: gateway}
}

// CreateIntent handles POST /v1/payments/intent.  The body carries the
// amount in cents; the response carries the gateway client secret.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var body struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	secret, err := h.Gateway.CreateIntent(body.AmountCents)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"client_secret": secret})
}
