package interfaces

import (
	"context"

	"unipool/internal/models"
	"unipool/internal/utils"
)

type RideBookingTally struct {
	RideID        string `bson:"_id"`
	Bookings      int64  `bson:"bookings"`
	SeatsAccepted int64  `bson:"seats_accepted"`
	Accepted      int64  `bson:"accepted"`
}

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// Listing
	ListByPassenger(ctx context.Context, passengerID string, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	ListByRide(ctx context.Context, rideID string, statuses ...models.BookingStatus) ([]*models.Booking, error)

	// UpdateStatus moves a booking from one status to another and returns
	// ErrConditionNotMet if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
	RejectSeatHolding(ctx context.Context, rideID string) (int64, error)

	// Aggregates
	TallyByRides(ctx context.Context, rideIDs []string) (map[string]*RideBookingTally, error)

	// Chat metadata
	RecordMessage(ctx context.Context, id string, snapshot *models.MessageSnapshot, receiverID string) error
	ResetUnread(ctx context.Context, id, userID string) error
}
