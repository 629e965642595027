package jobs

import (
	"context"
	"fmt"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/service"
)

// FlagOverdueBookings moves open bookings past their end time (plus grace) to
// OVERDUE, and escalates those beyond the last late tier to MANUAL_REVIEW.
func (jr *JobRunner) FlagOverdueBookings() {
	jr.runWithRecovery("FlagOverdueBookings", func(ctx context.Context) error {
		now := jr.now().UTC()
		bookings, err := jr.bookings.ListOverdue(ctx, now.Add(-jr.policy.GracePeriod))
		if err != nil {
			return fmt.Errorf("list overdue bookings: %w", err)
		}

		flagged, escalated := 0, 0
		for i := range bookings {
			b := &bookings[i]
			late := pricing.ClassifyLateness(jr.policy, b.EndTime, now)
			switch {
			case late.WithinGrace:
				continue
			case late.ManualReview:
				b.Status = domain.BookingStatusManualReview
				if err := jr.bookings.Update(ctx, b); err != nil {
					logger.Error("Failed to escalate booking", "bookingID", b.ID, "error", err)
					continue
				}
				service.NotifyManualReview(ctx, jr.notes, jr.services.Email, b, late.Overage)
				escalated++
			case b.Status != domain.BookingStatusOverdue:
				b.Status = domain.BookingStatusOverdue
				if err := jr.bookings.Update(ctx, b); err != nil {
					logger.Error("Failed to flag booking overdue", "bookingID", b.ID, "error", err)
					continue
				}
				service.NotifyOverdue(ctx, jr.notes, b, late.Tier.Name)
				flagged++
			}
			logger.Debug("Overdue booking", "bookingID", b.ID, "overage", late.Overage, "tier", late.Tier.Name)
		}

		logger.Info("Overdue bookings processed", "scanned", len(bookings), "flagged", flagged, "escalated", escalated)
		return nil
	})
}

// CancelStalePending releases bikes held by bookings whose deposit was never paid.
func (jr *JobRunner) CancelStalePending() {
	jr.runWithRecovery("CancelStalePending", func(ctx context.Context) error {
		timeout := time.Duration(jr.config.Payment.PendingTimeoutMinutes) * time.Minute
		n, err := jr.bookings.CancelStalePending(ctx, jr.now().UTC().Add(-timeout))
		if err != nil {
			return fmt.Errorf("cancel stale bookings: %w", err)
		}
		logger.Info("Cancelled unpaid bookings", "count", n)
		return nil
	})
}
