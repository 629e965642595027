package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type bikeRepository struct {
	db *sql.DB
}

func NewBikeRepository(db *sql.DB) repository.BikeRepository {
	return &bikeRepository{db: db}
}

func (r *bikeRepository) Create(ctx context.Context, b *domain.Bike) error {
	query := `INSERT INTO bikes (owner_id, name, kind, hourly_rate_paise, status, image_url, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	b.CreatedOn = time.Now().UTC()
	return r.db.QueryRowContext(ctx, query, b.OwnerID, b.Name, b.Kind, b.HourlyRate, b.Status, b.ImageURL, b.CreatedOn).Scan(&b.ID)
}

func (r *bikeRepository) GetByID(ctx context.Context, id int32) (*domain.Bike, error) {
	b := &domain.Bike{}
	query := `SELECT id, owner_id, name, kind, hourly_rate_paise, status, COALESCE(image_url, ''), created_on FROM bikes WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Kind, &b.HourlyRate, &b.Status, &b.ImageURL, &b.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bike %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bike %d: %w", id, err)
	}
	return b, nil
}

func (r *bikeRepository) List(ctx context.Context, status domain.BikeStatus) ([]domain.Bike, error) {
	query := `SELECT id, owner_id, name, kind, hourly_rate_paise, status, COALESCE(image_url, ''), created_on FROM bikes`
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	defer rows.Close()

	var bikes []domain.Bike
	for rows.Next() {
		var b domain.Bike
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Kind, &b.HourlyRate, &b.Status, &b.ImageURL, &b.CreatedOn); err != nil {
			return nil, err
		}
		bikes = append(bikes, b)
	}
	return bikes, rows.Err()
}

func (r *bikeRepository) UpdateStatus(ctx context.Context, id int32, status domain.BikeStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bikes SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("bike %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
