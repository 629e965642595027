package service

import (
	"context"
	"errors"
	"fmt"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/security"
)

var ErrInvalidBike = errors.New("invalid bike")

type bikeService struct {
	bikeRepo repository.BikeRepository
}

func NewBikeService(bikeRepo repository.BikeRepository) BikeService {
	return &bikeService{bikeRepo: bikeRepo}
}

// ListBikes returns the bikes open for booking.
func (s *bikeService) ListBikes(ctx context.Context) ([]domain.Bike, error) {
	return s.bikeRepo.List(ctx, domain.BikeStatusAvailable)
}

func (s *bikeService) AddBike(ctx context.Context, caller *security.Identity, bike *domain.Bike) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	if bike.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBike)
	}
	if bike.HourlyRate <= 0 {
		return fmt.Errorf("%w: hourly rate must be positive", ErrInvalidBike)
	}
	switch bike.Kind {
	case domain.BikeKindBike, domain.BikeKindMoped:
	case "":
		bike.Kind = domain.BikeKindBike
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBike, bike.Kind)
	}
	if bike.OwnerID == "" {
		bike.OwnerID = caller.UserID
	}
	bike.Status = domain.BikeStatusAvailable
	if err := s.bikeRepo.Create(ctx, bike); err != nil {
		return err
	}
	logger.Info("Bike added", "bikeID", bike.ID, "name", bike.Name, "rate", bike.HourlyRate.String())
	return nil
}

func (s *bikeService) SetBikeStatus(ctx context.Context, caller *security.Identity, bikeID int32, status domain.BikeStatus) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	switch status {
	case domain.BikeStatusAvailable, domain.BikeStatusMaintenance, domain.BikeStatusRetired:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBike, status)
	}
	err := s.bikeRepo.UpdateStatus(ctx, bikeID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrBikeNotFound, bikeID)
	}
	return err
}
