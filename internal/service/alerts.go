package service

import (
	"context"
	"fmt"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

// NotifyManualReview tells admins a bike is far past its return time.
func NotifyManualReview(ctx context.Context, noteRepo repository.NotificationRepository, emailSvc EmailService, b *domain.Booking, overage time.Duration) {
	id := b.ID
	msg := fmt.Sprintf("Booking %s for bike #%d is %s past its end time and needs manual review.",
		b.Reference, b.BikeID, overage.Round(time.Minute))
	note := &domain.Notification{
		UserID:    domain.AdminRecipient,
		BookingID: &id,
		Title:     "Booking needs manual review",
		Message:   msg,
		Attributes: map[string]string{
			"type":       "MANUAL_REVIEW",
			"booking_id": fmt.Sprintf("%d", b.ID),
		},
	}
	_ = noteRepo.Create(ctx, note)
	_ = emailSvc.SendAdminAlert(ctx, fmt.Sprintf("Manual review: booking %d", b.ID), msg)
}

// NotifyOverdue reminds the renter that the booked end time has passed and
// late charges are accruing.
func NotifyOverdue(ctx context.Context, noteRepo repository.NotificationRepository, b *domain.Booking, tier string) {
	id := b.ID
	note := &domain.Notification{
		UserID:    b.UserID,
		BookingID: &id,
		Title:     "Your rental is overdue",
		Message: fmt.Sprintf("Booking %s was due back at %s. Late charges at the %s rate now apply until the bike is returned.",
			b.Reference, b.EndTime.UTC().Format("2006-01-02 15:04 MST"), tier),
		Attributes: map[string]string{
			"type":       "OVERDUE",
			"booking_id": fmt.Sprintf("%d", b.ID),
			"tier":       tier,
		},
	}
	_ = noteRepo.Create(ctx, note)
}
