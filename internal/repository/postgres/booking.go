package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/repository"

	"github.com/lib/pq"
)

const bookingColumns = `id, reference, bike_id, user_id, COALESCE(user_email, ''), start_time, end_time, billed_hours,
	hourly_rate_paise, total_price_paise, deposit_paise, platform_fee_paise, owner_share_paise, remaining_paise,
	actual_end_time, adjusted_price_paise, refund_paise, additional_charges_paise, adjustment_percent,
	COALESCE(settlement_outcome, ''), status, COALESCE(payment_ref, ''), created_on, updated_on`

// bookings in these states hold the bike for their window
var liveStatuses = []string{
	string(domain.BookingStatusPendingPayment),
	string(domain.BookingStatusConfirmed),
	string(domain.BookingStatusActive),
	string(domain.BookingStatusOverdue),
	string(domain.BookingStatusManualReview),
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.Reference, &b.BikeID, &b.UserID, &b.UserEmail, &b.StartTime, &b.EndTime, &b.BilledHours,
		&b.HourlyRate, &b.TotalPrice, &b.DepositAmount, &b.PlatformFee, &b.OwnerShare, &b.RemainingAmount,
		&b.ActualEndTime, &b.AdjustedPrice, &b.RefundAmount, &b.AdditionalCharges, &b.AdjustmentPercent,
		&b.SettlementOutcome, &b.Status, &b.PaymentRef, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Reserve(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Reserve", "bikeID", b.BikeID, "start", b.StartTime, "end", b.EndTime)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockBike(ctx, tx, b.BikeID); err != nil {
		logger.ExitMethodWithError("bookingRepository.Reserve", err, "bikeID", b.BikeID)
		return err
	}
	overlap, err := hasOverlap(ctx, tx, b.BikeID, b.StartTime, b.EndTime, 0)
	if err != nil {
		return err
	}
	if overlap {
		logger.ExitMethodWithError("bookingRepository.Reserve", repository.ErrOverlap, "bikeID", b.BikeID)
		return repository.ErrOverlap
	}

	now := time.Now().UTC()
	b.CreatedOn, b.UpdatedOn = now, now
	query := `INSERT INTO bookings (reference, bike_id, user_id, user_email, start_time, end_time, billed_hours,
	          hourly_rate_paise, total_price_paise, deposit_paise, platform_fee_paise, owner_share_paise, remaining_paise,
	          status, payment_ref, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	logger.DatabaseCall("INSERT", "bookings", "bikeID", b.BikeID)
	err = tx.QueryRowContext(ctx, query, b.Reference, b.BikeID, b.UserID, b.UserEmail, b.StartTime, b.EndTime, b.BilledHours,
		b.HourlyRate, b.TotalPrice, b.DepositAmount, b.PlatformFee, b.OwnerShare, b.RemainingAmount,
		b.Status, b.PaymentRef, b.CreatedOn, b.UpdatedOn).Scan(&b.ID)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)
	if err != nil {
		return mapWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError(err)
	}
	logger.ExitMethod("bookingRepository.Reserve", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) Extend(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockBike(ctx, tx, b.BikeID); err != nil {
		return err
	}
	overlap, err := hasOverlap(ctx, tx, b.BikeID, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return err
	}
	if overlap {
		return repository.ErrOverlap
	}

	b.UpdatedOn = time.Now().UTC()
	query := `UPDATE bookings SET end_time = $1, billed_hours = $2, total_price_paise = $3, remaining_paise = $4, updated_on = $5 WHERE id = $6`
	if _, err := tx.ExecContext(ctx, query, b.EndTime, b.BilledHours, b.TotalPrice, b.RemainingAmount, b.UpdatedOn, b.ID); err != nil {
		return mapWriteError(err)
	}
	return mapWriteError(tx.Commit())
}

func lockBike(ctx context.Context, q querier, bikeID int32) error {
	var id int32
	err := q.QueryRowContext(ctx, `SELECT id FROM bikes WHERE id = $1 FOR UPDATE`, bikeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("bike %d: %w", bikeID, repository.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock bike %d: %w", bikeID, err)
	}
	return nil
}

func hasOverlap(ctx context.Context, q querier, bikeID int32, start, end time.Time, excludeID int32) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings
	          WHERE bike_id = $1 AND id <> $2 AND status = ANY($3) AND start_time < $5 AND end_time > $4)`
	var exists bool
	if err := q.QueryRowContext(ctx, query, bikeID, excludeID, pq.Array(liveStatuses), start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap for bike %d: %w", bikeID, err)
	}
	return exists, nil
}

func (r *bookingRepository) HasOverlap(ctx context.Context, bikeID int32, start, end time.Time, excludeID int32) (bool, error) {
	return hasOverlap(ctx, r.db, bikeID, start, end, excludeID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	b.UpdatedOn = time.Now().UTC()
	query := `UPDATE bookings SET end_time = $1, billed_hours = $2, total_price_paise = $3, remaining_paise = $4,
	          actual_end_time = $5, adjusted_price_paise = $6, refund_paise = $7, additional_charges_paise = $8,
	          adjustment_percent = $9, settlement_outcome = $10, status = $11, payment_ref = $12, updated_on = $13
	          WHERE id = $14`
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID, "status", b.Status)
	result, err := r.db.ExecContext(ctx, query, b.EndTime, b.BilledHours, b.TotalPrice, b.RemainingAmount,
		b.ActualEndTime, b.AdjustedPrice, b.RefundAmount, b.AdditionalCharges,
		b.AdjustmentPercent, b.SettlementOutcome, b.Status, b.PaymentRef, b.UpdatedOn, b.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookingID", b.ID)
		return mapWriteError(err)
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "bookingID", b.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking %d: %w", b.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`
	bookings, err := r.list(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	open := []string{
		string(domain.BookingStatusConfirmed),
		string(domain.BookingStatusActive),
		string(domain.BookingStatusOverdue),
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = ANY($1) AND end_time < $2 ORDER BY end_time`
	return r.list(ctx, query, pq.Array(open), cutoff)
}

func (r *bookingRepository) ListSettled(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND actual_end_time >= $2 AND actual_end_time < $3 ORDER BY actual_end_time`
	return r.list(ctx, query, domain.BookingStatusCompleted, from, to)
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) CancelStalePending(ctx context.Context, createdBefore time.Time) (int64, error) {
	query := `UPDATE bookings SET status = $1, updated_on = $2 WHERE status = $3 AND created_on < $4`
	logger.DatabaseCall("UPDATE", "bookings", "op", "cancel stale pending")
	result, err := r.db.ExecContext(ctx, query, domain.BookingStatusCancelled, time.Now().UTC(), domain.BookingStatusPendingPayment, createdBefore)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err)
	return rows, err
}
