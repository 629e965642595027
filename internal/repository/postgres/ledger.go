package postgres

import (
	"context"
	"database/sql"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error {
	query := `INSERT INTO ledger_transactions (booking_id, user_id, amount_paise, type, payment_ref, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	tx.CreatedOn = time.Now().UTC()
	return r.db.QueryRowContext(ctx, query, tx.BookingID, tx.UserID, tx.Amount, tx.Type, tx.PaymentRef, tx.Description, tx.CreatedOn).Scan(&tx.ID)
}

func (r *ledgerRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.LedgerTransaction, error) {
	query := `SELECT id, booking_id, user_id, amount_paise, type, COALESCE(payment_ref, ''), COALESCE(description, ''), created_on
	          FROM ledger_transactions WHERE booking_id = $1 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.LedgerTransaction
	for rows.Next() {
		var tx domain.LedgerTransaction
		if err := rows.Scan(&tx.ID, &tx.BookingID, &tx.UserID, &tx.Amount, &tx.Type, &tx.PaymentRef, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
