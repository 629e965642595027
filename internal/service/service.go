package service

import (
	"context"
	"errors"
	"io"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/payment"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/receipt"
	"bikerental-backend/internal/report"
	"bikerental-backend/internal/security"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBikeNotFound        = errors.New("bike not found")
	ErrBikeUnavailable     = errors.New("bike is not available for booking")
	ErrBookingConflict     = errors.New("bike is already booked for part of that window")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidBookingState = errors.New("booking is not in a state that allows this action")
	ErrPaymentFailed       = errors.New("deposit payment failed")
)

// QuoteRequest asks for the price of renting a bike over a window.
type QuoteRequest struct {
	BikeID    int32     `json:"bike_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Quote is the estimate screen: price breakdown plus how the deposit splits.
type Quote struct {
	BikeID     int32                 `json:"bike_id"`
	HourlyRate pricing.Money         `json:"hourly_rate"`
	Estimate   pricing.PriceEstimate `json:"estimate"`
	Deposit    pricing.DepositSplit  `json:"deposit"`
}

type CreateBookingRequest = QuoteRequest

// SettleRequest closes a booking. Only admins may set ActualEndTime or
// AdjustmentPercent; customers settle at the current time.
type SettleRequest struct {
	ActualEndTime     *time.Time `json:"actual_end_time,omitempty"`
	AdjustmentPercent *float64   `json:"adjustment_percent,omitempty"`
}

type BookingService interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	CreateBooking(ctx context.Context, caller *security.Identity, req CreateBookingRequest) (*domain.Booking, *payment.ChargeResult, error)
	ConfirmDepositPayment(ctx context.Context, caller *security.Identity, bookingID int32, paymentRef string) (*domain.Booking, error)
	GetBooking(ctx context.Context, caller *security.Identity, bookingID int32) (*domain.Booking, error)
	ListMyBookings(ctx context.Context, caller *security.Identity, page, pageSize int32) ([]domain.Booking, int32, error)
	StartRide(ctx context.Context, caller *security.Identity, bookingID int32) (*domain.Booking, error)
	CancelBooking(ctx context.Context, caller *security.Identity, bookingID int32) (*domain.Booking, error)
	QuoteExtension(ctx context.Context, caller *security.Identity, bookingID int32, newEnd time.Time) (*pricing.Extension, error)
	ExtendBooking(ctx context.Context, caller *security.Identity, bookingID int32, newEnd time.Time) (*domain.Booking, *pricing.Extension, error)
	SettleReturn(ctx context.Context, caller *security.Identity, bookingID int32, req SettleRequest) (*domain.Booking, *pricing.Settlement, error)
	GetReceipt(ctx context.Context, caller *security.Identity, bookingID int32) (*receipt.Receipt, error)
}

type BikeService interface {
	ListBikes(ctx context.Context) ([]domain.Bike, error)
	AddBike(ctx context.Context, caller *security.Identity, bike *domain.Bike) error
	SetBikeStatus(ctx context.Context, caller *security.Identity, bikeID int32, status domain.BikeStatus) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, caller *security.Identity, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, caller *security.Identity, notificationID int32) error
}

type ReportService interface {
	// WriteSettlementReport streams an xlsx report of bookings settled in [from, to).
	WriteSettlementReport(ctx context.Context, w io.Writer, from, to time.Time) (report.Totals, error)
	// ArchiveMonth stores the report for the calendar month containing month.
	ArchiveMonth(ctx context.Context, month time.Time) (string, error)
	OpenArchived(ctx context.Context, key string) (io.ReadCloser, error)
	ListArchived(ctx context.Context) ([]string, error)
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, to string, r *receipt.Receipt) error
	SendSettlementReceipt(ctx context.Context, to string, r *receipt.Receipt) error
	SendAdminAlert(ctx context.Context, subject, body string) error
}
