// Package payment wraps the Stripe payment-gateway collaborator.  The
// backend only ever creates a PaymentIntent and hands its client secret to
// the frontend; charge authorization and settlement happen entirely on the
// gateway's side, and the enrollment workflow treats "payment authorized"
// as a precondition, never a thing it verifies.
package payment

import (
	"errors"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
)

// Client creates payment intents against Stripe.
type Client struct {
	currency string
}

// NewClient configures the Stripe SDK with the given secret key and
// returns a client that charges in the given currency.
func NewClient(secretKey, currency string) *Client {
	stripe.Key = secretKey
	if currency == "" {
		currency = "usd"
	}
	return &Client{currency: currency}
}

// ErrInvalidAmount is returned for non-positive charge amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// CreateIntent creates a card PaymentIntent for the given amount in cents
// and returns the client secret the frontend needs to complete the charge.
func (c *Client) CreateIntent(amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(c.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
