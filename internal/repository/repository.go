package repository

import (
	"context"
	"errors"
	"time"

	"bikerental-backend/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrOverlap is returned when a booking window collides with another
	// booking of the same bike.
	ErrOverlap = errors.New("booking window overlaps an existing booking")
)

type BikeRepository interface {
	Create(ctx context.Context, bike *domain.Bike) error
	GetByID(ctx context.Context, id int32) (*domain.Bike, error)
	List(ctx context.Context, status domain.BikeStatus) ([]domain.Bike, error)
	UpdateStatus(ctx context.Context, id int32, status domain.BikeStatus) error
}

type BookingRepository interface {
	// Reserve inserts the booking after checking, under a lock on the bike
	// row, that no other live booking overlaps its window.
	Reserve(ctx context.Context, b *domain.Booking) error
	// Extend persists a new end time and price under the same lock, failing
	// with ErrOverlap if the longer window collides.
	Extend(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	HasOverlap(ctx context.Context, bikeID int32, start, end time.Time, excludeID int32) (bool, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.Booking, int32, error)
	// ListOverdue returns open bookings whose end time is before cutoff.
	ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	// ListSettled returns bookings closed with an actual end time in [from, to).
	ListSettled(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
	// CancelStalePending cancels unpaid bookings created before the given time.
	CancelStalePending(ctx context.Context, createdBefore time.Time) (int64, error)
}

type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.LedgerTransaction, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int32, userID string) error
}
