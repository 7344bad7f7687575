package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"
	"unipool/pkg/logger"
)

type RideService interface {
	CreateRide(ctx context.Context, ride *models.Ride) (*models.Ride, error)
	GetRide(ctx context.Context, id string) (*models.RideWithStats, error)
	ListRides(ctx context.Context, driverID string, params *utils.PaginationParams) ([]*models.RideWithStats, int64, error)

	// Lifecycle, driver only
	UpdateRideStatus(ctx context.Context, id, callerID string, status models.RideStatus) (*models.Ride, error)
	UpdateLocation(ctx context.Context, id, callerID string, lat, lng float64) (*models.Ride, error)
	DeleteRide(ctx context.Context, id, callerID string) error
}

type rideService struct {
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	txManager   interfaces.TransactionManager
	notifier    NotificationService
	logger      *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	txManager interfaces.TransactionManager,
	notifier NotificationService,
	logger *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *rideService) CreateRide(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	if ride.SeatsTotal < 1 || ride.SeatsTotal > utils.MaxSeatsPerRide {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"seatsTotal": fmt.Sprintf("seatsTotal must be between 1 and %d", utils.MaxSeatsPerRide),
		})
	}

	ride.SeatsAvailable = ride.SeatsTotal
	ride.Status = models.RideStatusScheduled
	ride.IsActive = true
	ride.CurrentLat, ride.CurrentLng = nil, nil

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, utils.AsAppError(err)
	}

	s.logger.WithContext(ctx).LogRideEvent(ride.ID, "created", map[string]interface{}{
		"driver_id":   ride.DriverID,
		"seats_total": ride.SeatsTotal,
	})

	return ride, nil
}

func (s *rideService) GetRide(ctx context.Context, id string) (*models.RideWithStats, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, utils.ResourceRide)
	}

	withStats, err := s.attachStats(ctx, []*models.Ride{ride})
	if err != nil {
		return nil, utils.AsAppError(err)
	}
	return withStats[0], nil
}

// ListRides lists a driver's rides, or every active ride soonest first when
// driverID is empty.
func (s *rideService) ListRides(ctx context.Context, driverID string, params *utils.PaginationParams) ([]*models.RideWithStats, int64, error) {
	filter := interfaces.RideFilter{DriverID: driverID, ActiveOnly: driverID == ""}

	rides, total, err := s.rideRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, utils.AsAppError(err)
	}

	withStats, err := s.attachStats(ctx, rides)
	if err != nil {
		return nil, 0, utils.AsAppError(err)
	}
	return withStats, total, nil
}

func (s *rideService) attachStats(ctx context.Context, rides []*models.Ride) ([]*models.RideWithStats, error) {
	ids := make([]string, 0, len(rides))
	for _, ride := range rides {
		ids = append(ids, ride.ID)
	}

	tallies, err := s.bookingRepo.TallyByRides(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*models.RideWithStats, 0, len(rides))
	for _, ride := range rides {
		stats := &models.RideWithStats{Ride: ride}
		if tally, ok := tallies[ride.ID]; ok {
			stats.BookingsCount = tally.Bookings
		}
		result = append(result, stats)
	}
	return result, nil
}

// UpdateRideStatus moves a ride forward along scheduled -> ongoing -> completed.
func (s *rideService) UpdateRideStatus(ctx context.Context, id, callerID string, status models.RideStatus) (*models.Ride, error) {
	if !status.IsValid() {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"status": "Status must be one of scheduled, ongoing, completed",
		})
	}

	ride, err := s.authorizeDriver(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if !ride.Status.CanTransitionTo(status) {
		return nil, utils.NewInvalidTransitionError(fmt.Sprintf("Ride is %s and cannot move to %s", ride.Status, status))
	}

	updated, err := s.rideRepo.UpdateStatus(ctx, id, ride.Status, status)
	if errors.Is(err, interfaces.ErrConditionNotMet) {
		return nil, utils.NewInvalidTransitionError("Ride was changed by another request")
	}
	if err != nil {
		return nil, utils.AsAppError(err)
	}

	s.logger.WithContext(ctx).LogRideEvent(id, string(status), nil)
	s.notifier.NotifyMany(ctx, []string{
		models.RideChannel(id),
		models.DriverChannel(updated.DriverID),
	}, models.EventRideUpdated, updated)

	return updated, nil
}

func (s *rideService) UpdateLocation(ctx context.Context, id, callerID string, lat, lng float64) (*models.Ride, error) {
	if _, err := s.authorizeDriver(ctx, id, callerID); err != nil {
		return nil, err
	}

	updated, err := s.rideRepo.UpdateLocation(ctx, id, lat, lng)
	if err != nil {
		return nil, translateError(err, utils.ResourceRide)
	}

	s.notifier.Notify(ctx, models.RideChannel(id), models.EventLocationUpdate, map[string]interface{}{
		"rideId":    id,
		"lat":       lat,
		"lng":       lng,
		"updatedAt": updated.UpdatedAt,
	})

	return updated, nil
}

// DeleteRide rejects every booking still holding seats and removes the ride
// in one transaction. Seat counts are not restored because the ride is gone.
func (s *rideService) DeleteRide(ctx context.Context, id, callerID string) error {
	if strings.TrimSpace(callerID) == "" {
		return utils.NewUnauthenticatedError(utils.ErrMissingIdentity)
	}

	var (
		ride     *models.Ride
		affected []*models.Booking
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.rideRepo.GetByID(txCtx, id)
		if err != nil {
			return translateError(err, utils.ResourceRide)
		}
		if current.DriverID != callerID {
			return utils.NewForbiddenError("Only the driver can delete this ride")
		}

		holding, err := s.bookingRepo.ListByRide(txCtx, id, models.SeatHoldingStatuses...)
		if err != nil {
			return err
		}
		if _, err := s.bookingRepo.RejectSeatHolding(txCtx, id); err != nil {
			return err
		}
		if err := s.rideRepo.Delete(txCtx, id); err != nil {
			return err
		}

		ride, affected = current, holding
		return nil
	})
	if err != nil {
		return translateError(err, utils.ResourceRide)
	}

	s.logger.WithContext(ctx).LogRideEvent(id, "deleted", map[string]interface{}{
		"driver_id":         ride.DriverID,
		"rejected_bookings": len(affected),
	})

	for _, booking := range affected {
		booking.Status = models.BookingStatusRejected
		s.notifier.NotifyMany(ctx, []string{
			models.BookingChannel(booking.ID),
			models.PassengerChannel(booking.PassengerID),
		}, models.EventBookingUpdated, &models.BookingEvent{Booking: booking, Ride: ride})
	}

	s.notifier.NotifyMany(ctx, []string{
		models.DriverChannel(ride.DriverID),
		models.RideChannel(ride.ID),
	}, models.EventRideDeleted, map[string]interface{}{
		"rideId":           ride.ID,
		"rejectedBookings": len(affected),
	})

	return nil
}

func (s *rideService) authorizeDriver(ctx context.Context, id, callerID string) (*models.Ride, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, utils.NewUnauthenticatedError(utils.ErrMissingIdentity)
	}

	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, utils.ResourceRide)
	}
	if ride.DriverID != callerID {
		return nil, utils.NewForbiddenError("Only the driver can update this ride")
	}
	return ride, nil
}
