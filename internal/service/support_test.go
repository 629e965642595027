package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/service"
	"bikerental-backend/internal/storage"
)

func TestBikeService(t *testing.T) {
	ctx := context.Background()

	t.Run("Only admins add bikes", func(t *testing.T) {
		repo := new(MockBikeRepo)
		svc := service.NewBikeService(repo)
		err := svc.AddBike(ctx, renter, &domain.Bike{Name: "Activa", HourlyRate: pricing.Rupees(90)})
		assert.ErrorIs(t, err, service.ErrForbidden)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Add defaults kind, owner and status", func(t *testing.T) {
		repo := new(MockBikeRepo)
		svc := service.NewBikeService(repo)
		repo.On("Create", ctx, mock.MatchedBy(func(b *domain.Bike) bool {
			return b.Kind == domain.BikeKindBike && b.OwnerID == admin.UserID && b.Status == domain.BikeStatusAvailable
		})).Return(nil)

		require.NoError(t, svc.AddBike(ctx, admin, &domain.Bike{Name: "Hercules", HourlyRate: pricing.Rupees(40)}))
		repo.AssertExpectations(t)
	})

	t.Run("Rejects a free bike", func(t *testing.T) {
		svc := service.NewBikeService(new(MockBikeRepo))
		err := svc.AddBike(ctx, admin, &domain.Bike{Name: "Free", HourlyRate: 0})
		assert.ErrorIs(t, err, service.ErrInvalidBike)
	})

	t.Run("Status change", func(t *testing.T) {
		repo := new(MockBikeRepo)
		svc := service.NewBikeService(repo)
		repo.On("UpdateStatus", ctx, int32(7), domain.BikeStatusMaintenance).Return(nil)
		repo.On("UpdateStatus", ctx, int32(8), domain.BikeStatusRetired).Return(repository.ErrNotFound)

		assert.NoError(t, svc.SetBikeStatus(ctx, admin, 7, domain.BikeStatusMaintenance))
		assert.ErrorIs(t, svc.SetBikeStatus(ctx, admin, 8, domain.BikeStatusRetired), service.ErrBikeNotFound)
		assert.ErrorIs(t, svc.SetBikeStatus(ctx, admin, 7, "BROKEN"), service.ErrInvalidBike)
	})

	t.Run("List only shows available bikes", func(t *testing.T) {
		repo := new(MockBikeRepo)
		repo.On("List", ctx, domain.BikeStatusAvailable).Return([]domain.Bike{*scooty()}, nil)
		bikes, err := service.NewBikeService(repo).ListBikes(ctx)
		require.NoError(t, err)
		assert.Len(t, bikes, 1)
	})
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepo)
	svc := service.NewNotificationService(repo)

	repo.On("List", ctx, renter.UserID, int32(10), int32(10)).Return([]domain.Notification{{ID: 1}}, 11, nil)
	repo.On("List", ctx, domain.AdminRecipient, int32(20), int32(0)).Return([]domain.Notification{}, 0, nil)
	repo.On("MarkAsRead", ctx, int32(1), renter.UserID).Return(nil)
	repo.On("MarkAsRead", ctx, int32(2), renter.UserID).Return(fmt.Errorf("notification 2: %w", repository.ErrNotFound))

	notes, total, err := svc.GetNotifications(ctx, renter, 2, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, int32(11), total)

	_, _, err = svc.GetNotifications(ctx, admin, 0, 0)
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(ctx, renter, 1))
	assert.ErrorIs(t, svc.MarkAsRead(ctx, renter, 2), service.ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, nil, 1), service.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestReportService(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	bookings := new(MockBookingRepo)
	svc := service.NewReportService(bookings, store)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	settled := confirmedBooking(from.Add(48 * time.Hour))
	adjusted := pricing.Rupees(120)
	returned := settled.EndTime.Add(-time.Hour)
	settled.Status = domain.BookingStatusCompleted
	settled.AdjustedPrice = &adjusted
	settled.ActualEndTime = &returned
	settled.RefundAmount = pricing.Rupees(40)
	bookings.On("ListSettled", ctx, from, to).Return([]domain.Booking{*settled}, nil)

	t.Run("Streams a workbook", func(t *testing.T) {
		var buf bytes.Buffer
		totals, err := svc.WriteSettlementReport(ctx, &buf, from, to)
		require.NoError(t, err)
		assert.Equal(t, 1, totals.Bookings)
		assert.Equal(t, pricing.Rupees(40), totals.Refunds)
		assert.NotZero(t, buf.Len())
	})

	t.Run("Rejects an empty range", func(t *testing.T) {
		_, err := svc.WriteSettlementReport(ctx, io.Discard, to, from)
		assert.Error(t, err)
	})

	t.Run("Archives by month", func(t *testing.T) {
		key, err := svc.ArchiveMonth(ctx, time.Date(2026, 2, 17, 13, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "settlements/2026-02.xlsx", key)

		keys, err := svc.ListArchived(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{key}, keys)

		rc, err := svc.OpenArchived(ctx, "2026-02.xlsx")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("PK"), data[:2])
	})

	t.Run("Missing archive", func(t *testing.T) {
		_, err := svc.OpenArchived(ctx, "settlements/1999-01.xlsx")
		assert.ErrorIs(t, err, service.ErrReportNotFound)
	})
}
