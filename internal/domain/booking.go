package domain

import (
	"time"

	"bikerental-backend/internal/pricing"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusActive         BookingStatus = "ACTIVE"
	BookingStatusOverdue        BookingStatus = "OVERDUE"
	BookingStatusCompleted      BookingStatus = "COMPLETED"
	BookingStatusManualReview   BookingStatus = "MANUAL_REVIEW"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

// Booking is a reservation of one bike for a time window. Price fields are a
// snapshot taken at creation; later changes to the bike's listed rate never
// reach an existing booking.
type Booking struct {
	ID          int32     `json:"id"`
	Reference   string    `json:"reference"`
	BikeID      int32     `json:"bike_id"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	BilledHours int64     `json:"billed_hours"`

	HourlyRate      pricing.Money `json:"hourly_rate"`
	TotalPrice      pricing.Money `json:"total_price"`
	DepositAmount   pricing.Money `json:"deposit_amount"`
	PlatformFee     pricing.Money `json:"platform_fee"`
	OwnerShare      pricing.Money `json:"owner_share"`
	RemainingAmount pricing.Money `json:"remaining_amount"` // negative when money is owed back

	ActualEndTime     *time.Time     `json:"actual_end_time,omitempty"`
	AdjustedPrice     *pricing.Money `json:"adjusted_price,omitempty"`
	RefundAmount      pricing.Money  `json:"refund_amount"`
	AdditionalCharges pricing.Money  `json:"additional_charges"`
	AdjustmentPercent *float64       `json:"adjustment_percent,omitempty"`
	SettlementOutcome string         `json:"settlement_outcome,omitempty"`

	Status     BookingStatus `json:"status"`
	PaymentRef string        `json:"payment_ref,omitempty"`
	CreatedOn  time.Time     `json:"created_on"`
	UpdatedOn  time.Time     `json:"updated_on"`
}

// Terms returns the fields the pricing engine prices against.
func (b *Booking) Terms() pricing.BookingTerms {
	return pricing.BookingTerms{
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		TotalPrice:  b.TotalPrice,
		BilledHours: b.BilledHours,
	}
}

// IsOpen reports whether the vehicle may still be out with the renter.
func (b *Booking) IsOpen() bool {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusActive, BookingStatusOverdue:
		return true
	}
	return false
}
