package interfaces

import (
	"context"
	"errors"

	"unipool/internal/models"
	"unipool/internal/utils"
)

// ErrConditionNotMet is returned by guarded updates whose filter matched no document.
var ErrConditionNotMet = errors.New("conditional update matched no document")

// ErrDuplicate is returned when a unique index rejects an insert.
var ErrDuplicate = errors.New("duplicate document")

type RideFilter struct {
	DriverID   string
	ActiveOnly bool
}

type RideRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id string) (*models.Ride, error)
	Delete(ctx context.Context, id string) error

	// Listing
	List(ctx context.Context, filter RideFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	ListByDriver(ctx context.Context, driverID string) ([]*models.Ride, error)

	// Seat ledger. Both return ErrConditionNotMet when the guard fails.
	ReserveSeats(ctx context.Context, id string, seats int) (*models.Ride, error)
	ReleaseSeats(ctx context.Context, id string, seats int) (*models.Ride, error)

	// Lifecycle
	UpdateStatus(ctx context.Context, id string, from, to models.RideStatus) (*models.Ride, error)
	UpdateLocation(ctx context.Context, id string, lat, lng float64) (*models.Ride, error)
}
