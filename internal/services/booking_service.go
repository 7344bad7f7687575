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

type BookingService interface {
	// Seat ledger
	CreateBooking(ctx context.Context, rideID, passengerID string, seats int) (*models.Booking, error)
	TransitionBooking(ctx context.Context, bookingID, callerID string, target models.BookingStatus) (*models.Booking, error)

	// Queries
	GetBooking(ctx context.Context, id string) (*models.BookingWithRide, error)
	ListPassengerBookings(ctx context.Context, passengerID string, params *utils.PaginationParams) ([]*models.BookingWithRide, int64, error)
	ListRideBookings(ctx context.Context, rideID string) ([]*models.BookingWithRide, error)
}

type bookingService struct {
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	txManager   interfaces.TransactionManager
	notifier    NotificationService
	logger      *logger.Logger
}

func NewBookingService(
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	txManager interfaces.TransactionManager,
	notifier NotificationService,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateBooking reserves seats and records a pending booking in one
// transaction. The reservation is a guarded decrement, so two passengers
// racing for the last seat cannot both win.
func (s *bookingService) CreateBooking(ctx context.Context, rideID, passengerID string, seats int) (*models.Booking, error) {
	rideID, passengerID = strings.TrimSpace(rideID), strings.TrimSpace(passengerID)
	if rideID == "" || passengerID == "" {
		return nil, utils.NewValidationError("rideId and passengerId are required")
	}
	if seats < utils.MinSeatsPerBooking {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"seatsBooked": fmt.Sprintf("seatsBooked must be at least %d", utils.MinSeatsPerBooking),
		})
	}

	var (
		booking *models.Booking
		ride    *models.Ride
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		reserved, err := s.rideRepo.ReserveSeats(txCtx, rideID, seats)
		if errors.Is(err, interfaces.ErrConditionNotMet) {
			return s.classifyReserveMiss(txCtx, rideID)
		}
		if err != nil {
			return err
		}

		if reserved.DriverID == passengerID {
			return utils.NewValidationError("Drivers cannot book their own ride")
		}

		created := &models.Booking{
			RideID:      rideID,
			PassengerID: passengerID,
			Status:      models.BookingStatusPending,
			SeatsBooked: seats,
		}
		if err := s.bookingRepo.Create(txCtx, created); err != nil {
			return err
		}

		booking, ride = created, reserved
		return nil
	})
	if err != nil {
		return nil, translateError(err, utils.ResourceRide)
	}

	s.logger.WithContext(ctx).LogBookingEvent(booking.ID, "created", map[string]interface{}{
		"ride_id":         ride.ID,
		"passenger_id":    passengerID,
		"seats_booked":    seats,
		"seats_available": ride.SeatsAvailable,
	})

	event := &models.BookingEvent{Booking: booking, Ride: ride}
	s.notifier.NotifyMany(ctx, []string{
		models.BookingChannel(booking.ID),
		models.DriverChannel(ride.DriverID),
	}, models.EventBookingCreated, event)

	return booking, nil
}

// classifyReserveMiss explains why a guarded reservation matched nothing.
func (s *bookingService) classifyReserveMiss(ctx context.Context, rideID string) error {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}

	if !ride.IsBookable() {
		return utils.NewInvalidTransitionError("Ride is no longer accepting bookings")
	}
	return utils.NewCapacityError(ride.SeatsAvailable)
}

// TransitionBooking applies one edge of the booking lifecycle:
//
//	pending  -> accepted            driver, no seat change
//	pending  -> rejected            driver, releases seats
//	pending  -> cancelled           driver or passenger, releases seats
//	accepted -> cancelled           driver or passenger, releases seats
//
// The status write is conditional on the status read in the same
// transaction, so a booking releases its seats at most once.
func (s *bookingService) TransitionBooking(ctx context.Context, bookingID, callerID string, target models.BookingStatus) (*models.Booking, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, utils.NewUnauthenticatedError(utils.ErrMissingIdentity)
	}
	if !target.IsTransitionTarget() {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"status": "Status must be one of accepted, rejected, cancelled",
		})
	}

	var (
		booking *models.Booking
		ride    *models.Ride
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return translateError(err, utils.ResourceBooking)
		}

		currentRide, err := s.rideRepo.GetByID(txCtx, current.RideID)
		if err != nil {
			return translateError(err, utils.ResourceRide)
		}

		if err := authorizeTransition(current, currentRide, callerID, target); err != nil {
			return err
		}

		if !current.Status.CanTransition(target) {
			return utils.NewInvalidTransitionError(fmt.Sprintf("Booking is %s and cannot be %s", current.Status, target))
		}

		updated, err := s.bookingRepo.UpdateStatus(txCtx, current.ID, current.Status, target)
		if errors.Is(err, interfaces.ErrConditionNotMet) {
			return utils.NewInvalidTransitionError("Booking was changed by another request")
		}
		if err != nil {
			return err
		}

		if target.ReleasesSeats() && current.Status.HoldsSeats() {
			released, err := s.rideRepo.ReleaseSeats(txCtx, currentRide.ID, current.SeatsBooked)
			if errors.Is(err, interfaces.ErrConditionNotMet) {
				return utils.NewInternalError(utils.ErrInternalServer, fmt.Errorf("ride %s: %w", currentRide.ID, utils.ErrLedgerImbalance))
			}
			if err != nil {
				return err
			}
			currentRide = released
		}

		booking, ride = updated, currentRide
		return nil
	})
	if err != nil {
		return nil, translateError(err, utils.ResourceBooking)
	}

	s.logger.WithContext(ctx).LogBookingEvent(booking.ID, string(target), map[string]interface{}{
		"ride_id":         ride.ID,
		"caller_id":       callerID,
		"seats_booked":    booking.SeatsBooked,
		"seats_available": ride.SeatsAvailable,
	})

	event := &models.BookingEvent{Booking: booking, Ride: ride}
	s.notifier.NotifyMany(ctx, []string{
		models.BookingChannel(booking.ID),
		models.DriverChannel(ride.DriverID),
		models.PassengerChannel(booking.PassengerID),
	}, models.EventBookingUpdated, event)

	return booking, nil
}

// authorizeTransition: accept and reject belong to the driver, cancel to
// either party.
func authorizeTransition(booking *models.Booking, ride *models.Ride, callerID string, target models.BookingStatus) error {
	isDriver := callerID == ride.DriverID
	isPassenger := callerID == booking.PassengerID

	switch target {
	case models.BookingStatusAccepted, models.BookingStatusRejected:
		if !isDriver {
			return utils.NewForbiddenError("Only the driver can accept or reject a booking")
		}
	case models.BookingStatusCancelled:
		if !isDriver && !isPassenger {
			return utils.NewForbiddenError("Only the driver or the passenger can cancel a booking")
		}
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.BookingWithRide, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, utils.ResourceBooking)
	}

	withRides, err := s.attachRides(ctx, []*models.Booking{booking})
	if err != nil {
		return nil, translateError(err, utils.ResourceRide)
	}
	return withRides[0], nil
}

func (s *bookingService) ListPassengerBookings(ctx context.Context, passengerID string, params *utils.PaginationParams) ([]*models.BookingWithRide, int64, error) {
	bookings, total, err := s.bookingRepo.ListByPassenger(ctx, passengerID, params)
	if err != nil {
		return nil, 0, utils.AsAppError(err)
	}

	withRides, err := s.attachRides(ctx, bookings)
	if err != nil {
		return nil, 0, utils.AsAppError(err)
	}
	return withRides, total, nil
}

func (s *bookingService) ListRideBookings(ctx context.Context, rideID string) ([]*models.BookingWithRide, error) {
	bookings, err := s.bookingRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil, utils.AsAppError(err)
	}

	withRides, err := s.attachRides(ctx, bookings)
	if err != nil {
		return nil, utils.AsAppError(err)
	}
	return withRides, nil
}

// attachRides loads each distinct ride once. Bookings whose ride has been
// deleted are returned without one.
func (s *bookingService) attachRides(ctx context.Context, bookings []*models.Booking) ([]*models.BookingWithRide, error) {
	rides := make(map[string]*models.Ride)
	result := make([]*models.BookingWithRide, 0, len(bookings))

	for _, booking := range bookings {
		ride, seen := rides[booking.RideID]
		if !seen {
			var err error
			ride, err = s.rideRepo.GetByID(ctx, booking.RideID)
			if err != nil && !errors.Is(err, utils.ErrNotFound) {
				return nil, err
			}
			rides[booking.RideID] = ride
		}
		result = append(result, &models.BookingWithRide{Booking: booking, Ride: ride})
	}

	return result, nil
}
