package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/receipt"
)

func testReceipt(t *testing.T) *receipt.Receipt {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	r, err := receipt.Build(&domain.Booking{
		Reference:     "ref-1",
		BikeID:        7,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		BilledHours:   2,
		TotalPrice:    pricing.Rupees(160),
		DepositAmount: pricing.Rupees(42),
		PlatformFee:   pricing.Rupees(2),
		Status:        domain.BookingStatusConfirmed,
	})
	require.NoError(t, err)
	return r
}

func TestEmailService_SendBookingConfirmation(t *testing.T) {
	var sent *mail.SGMailV3
	s := &emailService{fromEmail: "rides@example.com", fromName: "Bike Rentals"}
	s.send = func(m *mail.SGMailV3) (*rest.Response, error) {
		sent = m
		return &rest.Response{StatusCode: 202}, nil
	}

	err := s.SendBookingConfirmation(context.Background(), "rider@example.com", testReceipt(t))
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, "Booking confirmed - ref-1", sent.Subject)
	assert.Equal(t, "rides@example.com", sent.From.Address)
	require.Len(t, sent.Personalizations, 1)
	assert.Equal(t, "rider@example.com", sent.Personalizations[0].To[0].Address)
	assert.Contains(t, sent.Content[0].Value, "₹160.00")
}

func TestEmailService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Provider rejects", func(t *testing.T) {
		s := &emailService{send: func(*mail.SGMailV3) (*rest.Response, error) {
			return &rest.Response{StatusCode: 401, Body: "unauthorized"}, nil
		}}
		err := s.SendSettlementReceipt(ctx, "rider@example.com", testReceipt(t))
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("Transport failure", func(t *testing.T) {
		s := &emailService{send: func(*mail.SGMailV3) (*rest.Response, error) {
			return nil, errors.New("connection reset")
		}}
		err := s.SendSettlementReceipt(ctx, "rider@example.com", testReceipt(t))
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestEmailService_Disabled(t *testing.T) {
	s := NewEmailService("", "rides@example.com", "Bike Rentals", "")
	assert.NoError(t, s.SendBookingConfirmation(context.Background(), "rider@example.com", testReceipt(t)))
	// no admin address configured
	assert.NoError(t, s.SendAdminAlert(context.Background(), "subject", "body"))
}

func TestEmailService_SendAdminAlert(t *testing.T) {
	var to, subject string
	s := &emailService{adminEmail: "ops@example.com", send: func(m *mail.SGMailV3) (*rest.Response, error) {
		to = m.Personalizations[0].To[0].Address
		subject = m.Subject
		return &rest.Response{StatusCode: 202}, nil
	}}
	require.NoError(t, s.SendAdminAlert(context.Background(), "Manual review: booking 3", "body"))
	assert.Equal(t, "ops@example.com", to)
	assert.Equal(t, "[Admin] Manual review: booking 3", subject)
}
