package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bikerental-backend/internal/logger"
)

// SimulatedGateway approves every charge on redirect. The checkout URL points
// back at the booking's payment confirm endpoint.
type SimulatedGateway struct {
	baseURL string
}

func NewSimulatedGateway(baseURL string) *SimulatedGateway {
	return &SimulatedGateway{baseURL: strings.TrimRight(baseURL, "/")}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount %s must be positive", ErrDeclined, req.Amount)
	}
	ref := "sim_" + uuid.New().String()
	logger.Info("Simulated payment created", "bookingID", req.BookingID, "amount", req.Amount.String(), "paymentRef", ref)
	return &ChargeResult{
		PaymentRef:  ref,
		Status:      StatusPending,
		CheckoutURL: fmt.Sprintf("%s/api/v1/bookings/%d/payment/confirm?payment_ref=%s", g.baseURL, req.BookingID, ref),
	}, nil
}
