package domain

import (
	"time"

	"bikerental-backend/internal/pricing"
)

type BikeStatus string

const (
	BikeStatusAvailable   BikeStatus = "AVAILABLE"
	BikeStatusMaintenance BikeStatus = "MAINTENANCE"
	BikeStatusRetired     BikeStatus = "RETIRED"
)

type BikeKind string

const (
	BikeKindBike  BikeKind = "bike"
	BikeKindMoped BikeKind = "moped"
)

type Bike struct {
	ID         int32         `json:"id"`
	OwnerID    string        `json:"owner_id"`
	Name       string        `json:"name"`
	Kind       BikeKind      `json:"kind"`
	HourlyRate pricing.Money `json:"hourly_rate"` // listed rate, only read when a booking is created
	Status     BikeStatus    `json:"status"`
	ImageURL   string        `json:"image_url,omitempty"`
	CreatedOn  time.Time     `json:"created_on"`
}
