package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	"bikerental-backend/internal/logger"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing mercadopago access token")

// paymentCreator is the part of the Mercado Pago payment client we use.
type paymentCreator interface {
	Create(ctx context.Context, request mppayment.Request) (*mppayment.Response, error)
}

type MercadoPagoGateway struct {
	client paymentCreator
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoGateway{client: mppayment.NewClient(cfg)}, nil
}

// chargePayload is the subset of the payment create body we send.
type chargePayload struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"external_reference"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

func (g *MercadoPagoGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	var p chargePayload
	p.TransactionAmount = float64(req.Amount.Paise()) / 100
	p.Description = req.Description
	p.ExternalReference = req.Reference
	p.PaymentMethodID = "pix"
	p.Payer.Email = req.PayerEmail

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var mpReq mppayment.Request
	if err := json.Unmarshal(raw, &mpReq); err != nil {
		return nil, fmt.Errorf("build mercadopago request: %w", err)
	}

	logger.ExternalServiceCall("mercadopago", "payment.Create", "bookingID", req.BookingID, "amount", req.Amount.String())
	resp, err := g.client.Create(ctx, mpReq)
	logger.ExternalServiceResult("mercadopago", "payment.Create", err, "bookingID", req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create payment: %w", err)
	}

	res := &ChargeResult{PaymentRef: fmt.Sprintf("%d", resp.ID)}
	switch resp.Status {
	case "approved":
		res.Status = StatusApproved
	case "rejected", "cancelled":
		return nil, fmt.Errorf("%w: mercadopago status %s", ErrDeclined, resp.Status)
	default:
		res.Status = StatusPending
		res.CheckoutURL = ticketURL(resp)
	}
	return res, nil
}

// ticketURL pulls the hosted checkout link out of a pending payment.
func ticketURL(resp *mppayment.Response) string {
	raw, err := json.Marshal(resp)
	if err != nil {
		return ""
	}
	var body struct {
		PointOfInteraction struct {
			TransactionData struct {
				TicketURL string `json:"ticket_url"`
			} `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.PointOfInteraction.TransactionData.TicketURL
}
