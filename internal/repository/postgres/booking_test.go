package postgres_test

import (
	"context"
	"testing"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{"id", "reference", "bike_id", "user_id", "user_email", "start_time", "end_time", "billed_hours",
	"hourly_rate_paise", "total_price_paise", "deposit_paise", "platform_fee_paise", "owner_share_paise", "remaining_paise",
	"actual_end_time", "adjusted_price_paise", "refund_paise", "additional_charges_paise", "adjustment_percent",
	"settlement_outcome", "status", "payment_ref", "created_on", "updated_on"}

func newBooking() *domain.Booking {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &domain.Booking{
		Reference:       "5d0c4a3e-7f1b-4c55-9b0e-2a4b5c6d7e8f",
		BikeID:          7,
		UserID:          "user-1",
		UserEmail:       "rider@example.com",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Hour),
		BilledHours:     2,
		HourlyRate:      pricing.Rupees(80),
		TotalPrice:      pricing.Rupees(160),
		DepositAmount:   pricing.Rupees(42),
		PlatformFee:     pricing.Rupees(2),
		OwnerShare:      pricing.Rupees(40),
		RemainingAmount: pricing.Rupees(120),
		Status:          domain.BookingStatusPendingPayment,
	}
}

func addBookingRow(rows *sqlmock.Rows, id int32, status domain.BookingStatus) *sqlmock.Rows {
	b := newBooking()
	now := time.Now()
	return rows.AddRow(id, b.Reference, b.BikeID, b.UserID, b.UserEmail, b.StartTime, b.EndTime, b.BilledHours,
		int64(b.HourlyRate), int64(b.TotalPrice), int64(b.DepositAmount), int64(b.PlatformFee), int64(b.OwnerShare), int64(b.RemainingAmount),
		nil, nil, int64(0), int64(0), nil, "", string(status), "", now, now)
}

func TestBookingRepository_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM bikes WHERE id = \$1 FOR UPDATE`).
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int32(7), int32(0), sqlmock.AnyArg(), b.StartTime, b.EndTime).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectCommit()

		err = repo.Reserve(ctx, b)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), b.ID)
		assert.False(t, b.CreatedOn.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overlapping booking", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM bikes`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err = repo.Reserve(ctx, newBooking())
		assert.ErrorIs(t, err, repository.ErrOverlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion constraint violation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM bikes`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO bookings").WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})
		mock.ExpectRollback()

		err = repo.Reserve(ctx, newBooking())
		assert.ErrorIs(t, err, repository.ErrOverlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown bike", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM bikes`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err = repo.Reserve(ctx, newBooking())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Extend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	b := newBooking()
	b.ID = 42
	b.EndTime = b.EndTime.Add(time.Hour)
	b.TotalPrice = pricing.Rupees(240)
	b.BilledHours = 3

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM bikes`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int32(7), int32(42), sqlmock.AnyArg(), b.StartTime, b.EndTime).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE bookings SET end_time`).
		WithArgs(b.EndTime, int64(3), int64(24000), sqlmock.AnyArg(), sqlmock.AnyArg(), int32(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Extend(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
			WithArgs(int32(42)).
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingCols), 42, domain.BookingStatusConfirmed))

		b, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int32(42), b.ID)
		assert.Equal(t, pricing.Rupees(160), b.TotalPrice)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.Nil(t, b.ActualEndTime)
		assert.Nil(t, b.AdjustedPrice)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
			WithArgs(int32(9)).
			WillReturnRows(sqlmock.NewRows(bookingCols))

		_, err := repo.GetByID(ctx, 9)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestBookingRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	b := newBooking()
	b.ID = 42
	b.Status = domain.BookingStatusCompleted

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, b))
	})

	t.Run("Missing row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Update(ctx, b), repository.ErrNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListOverdue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	cutoff := time.Now()
	rows := sqlmock.NewRows(bookingCols)
	addBookingRow(rows, 1, domain.BookingStatusActive)
	addBookingRow(rows, 2, domain.BookingStatusOverdue)
	mock.ExpectQuery(`FROM bookings WHERE status = ANY\(\$1\) AND end_time < \$2`).
		WithArgs(sqlmock.AnyArg(), cutoff).
		WillReturnRows(rows)

	bookings, err := repo.ListOverdue(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, domain.BookingStatusOverdue, bookings[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CancelStalePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewBookingRepository(db)

	before := time.Now().Add(-30 * time.Minute)
	mock.ExpectExec(`UPDATE bookings SET status = \$1`).
		WithArgs("CANCELLED", sqlmock.AnyArg(), "PENDING_PAYMENT", before).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CancelStalePending(context.Background(), before)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
