package payment

import (
	"context"
	"errors"

	"bikerental-backend/internal/pricing"
)

var ErrDeclined = errors.New("payment declined")

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ChargeRequest asks the provider to collect an amount from a renter.
type ChargeRequest struct {
	BookingID   int32
	Reference   string
	Amount      pricing.Money
	PayerEmail  string
	Description string
}

// ChargeResult is the provider's answer. CheckoutURL is set when the renter
// must be redirected to finish paying.
type ChargeResult struct {
	PaymentRef  string `json:"payment_ref"`
	Status      Status `json:"status"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// Gateway collects deposits and extra charges.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
