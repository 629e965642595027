package domain

import (
	"time"

	"bikerental-backend/internal/pricing"
)

type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "DEPOSIT"
	TransactionTypeExtensionCharge TransactionType = "EXTENSION_CHARGE"
	TransactionTypeLateCharge      TransactionType = "LATE_CHARGE"
	TransactionTypeRefund          TransactionType = "REFUND"
	TransactionTypeAdjustment      TransactionType = "ADJUSTMENT"
)

type LedgerTransaction struct {
	ID          int32           `json:"id"`
	BookingID   int32           `json:"booking_id"`
	UserID      string          `json:"user_id"`
	Amount      pricing.Money   `json:"amount"` // positive when collected from the renter, negative when paid back
	Type        TransactionType `json:"type"`
	PaymentRef  string          `json:"payment_ref,omitempty"`
	Description string          `json:"description"`
	CreatedOn   time.Time       `json:"created_on"`
}
