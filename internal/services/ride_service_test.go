package services

import (
	"context"
	"testing"
	"time"

	"unipool/internal/models"
	"unipool/internal/utils"
	"unipool/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRideService(f *fixture) RideService {
	return NewRideService(f.rides, f.bookings, f.tx, f.notifier, logger.NewNop())
}

func TestCreateRide(t *testing.T) {
	f := newFixture()
	svc := newRideService(f)

	ride, err := svc.CreateRide(context.Background(), &models.Ride{
		DriverID:       "driver-1",
		SourceAddress:  "H-12",
		DestAddress:    "F-7",
		DepartureTime:  time.Now().Add(time.Hour),
		SeatsTotal:     3,
		SeatsAvailable: 1,
		Status:         models.RideStatusCompleted,
		CostPerSeat:    200,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ride.ID)
	assert.Equal(t, 3, ride.SeatsAvailable)
	assert.Equal(t, models.RideStatusScheduled, ride.Status)
	assert.True(t, ride.IsActive)

	stored := f.store.ride(t, ride.ID)
	assert.Equal(t, 3, stored.SeatsAvailable)

	for _, seats := range []int{0, utils.MaxSeatsPerRide + 1} {
		_, err := svc.CreateRide(context.Background(), &models.Ride{DriverID: "driver-1", SeatsTotal: seats})
		assertKind(t, err, utils.KindValidation)
	}
}

func TestListRidesWithBookingCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRideService(f)
	bookings := newBookingService(f)

	first := f.store.addRide(t, "driver-1", 4)
	second := f.store.addRide(t, "driver-1", 4)
	other := f.store.addRide(t, "driver-2", 4)
	f.store.mutateRide(second.ID, func(r *models.Ride) { r.IsActive = false })

	_, err := bookings.CreateBooking(ctx, first.ID, "passenger-1", 1)
	require.NoError(t, err)
	_, err = bookings.CreateBooking(ctx, first.ID, "passenger-2", 1)
	require.NoError(t, err)

	t.Run("all active rides", func(t *testing.T) {
		rides, total, err := svc.ListRides(ctx, "", &utils.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)

		assert.EqualValues(t, 2, total)
		require.Len(t, rides, 2)
		assert.Equal(t, first.ID, rides[0].ID)
		assert.EqualValues(t, 2, rides[0].BookingsCount)
		assert.Equal(t, other.ID, rides[1].ID)
		assert.Zero(t, rides[1].BookingsCount)
	})

	t.Run("one driver including inactive", func(t *testing.T) {
		rides, total, err := svc.ListRides(ctx, "driver-1", &utils.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)

		assert.EqualValues(t, 2, total)
		assert.Len(t, rides, 2)
	})

	t.Run("get with stats", func(t *testing.T) {
		ride, err := svc.GetRide(ctx, first.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, ride.BookingsCount)
		assert.Equal(t, 2, ride.SeatsAvailable)

		_, err = svc.GetRide(ctx, "ride-missing")
		assertKind(t, err, utils.KindNotFound)
	})
}

func TestUpdateRideStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRideService(f)
	ride := f.store.addRide(t, "driver-1", 3)

	_, err := svc.UpdateRideStatus(ctx, ride.ID, "passenger-1", models.RideStatusOngoing)
	assertKind(t, err, utils.KindForbidden)

	_, err = svc.UpdateRideStatus(ctx, ride.ID, "", models.RideStatusOngoing)
	assertKind(t, err, utils.KindUnauthenticated)

	_, err = svc.UpdateRideStatus(ctx, ride.ID, "driver-1", models.RideStatus("cancelled"))
	assertKind(t, err, utils.KindValidation)

	_, err = svc.UpdateRideStatus(ctx, "ride-missing", "driver-1", models.RideStatusOngoing)
	assertKind(t, err, utils.KindNotFound)

	assert.Equal(t, models.RideStatusScheduled, f.store.ride(t, ride.ID).Status)
	assert.Zero(t, f.notifier.count())

	updated, err := svc.UpdateRideStatus(ctx, ride.ID, "driver-1", models.RideStatusOngoing)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusOngoing, updated.Status)
	assert.True(t, updated.IsActive)
	assert.ElementsMatch(t, []string{
		models.RideChannel(ride.ID),
		models.DriverChannel("driver-1"),
	}, f.notifier.channels(models.EventRideUpdated))

	_, err = svc.UpdateRideStatus(ctx, ride.ID, "driver-1", models.RideStatusScheduled)
	assertKind(t, err, utils.KindInvalidTransition)

	completed, err := svc.UpdateRideStatus(ctx, ride.ID, "driver-1", models.RideStatusCompleted)
	require.NoError(t, err)
	assert.False(t, completed.IsActive)

	_, err = newBookingService(f).CreateBooking(ctx, ride.ID, "passenger-1", 1)
	assertKind(t, err, utils.KindInvalidTransition)
}

func TestUpdateLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRideService(f)
	ride := f.store.addRide(t, "driver-1", 3)

	_, err := svc.UpdateLocation(ctx, ride.ID, "passenger-1", 33.6, 73.0)
	assertKind(t, err, utils.KindForbidden)

	updated, err := svc.UpdateLocation(ctx, ride.ID, "driver-1", 33.6844, 73.0479)
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentLat)
	assert.InDelta(t, 33.6844, *updated.CurrentLat, 1e-9)
	assert.InDelta(t, 73.0479, *updated.CurrentLng, 1e-9)

	assert.Equal(t, []string{models.RideChannel(ride.ID)}, f.notifier.channels(models.EventLocationUpdate))
}

func TestDeleteRideRejectsSeatHoldingBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRideService(f)
	bookings := newBookingService(f)
	ride := f.store.addRide(t, "driver-1", 6)

	pending, err := bookings.CreateBooking(ctx, ride.ID, "passenger-1", 1)
	require.NoError(t, err)
	accepted, err := bookings.CreateBooking(ctx, ride.ID, "passenger-2", 2)
	require.NoError(t, err)
	_, err = bookings.TransitionBooking(ctx, accepted.ID, "driver-1", models.BookingStatusAccepted)
	require.NoError(t, err)
	cancelled, err := bookings.CreateBooking(ctx, ride.ID, "passenger-3", 1)
	require.NoError(t, err)
	_, err = bookings.TransitionBooking(ctx, cancelled.ID, "passenger-3", models.BookingStatusCancelled)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRide(ctx, ride.ID, "driver-1"))

	_, err = f.rides.GetByID(ctx, ride.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.Equal(t, models.BookingStatusRejected, f.store.booking(t, pending.ID).Status)
	assert.Equal(t, models.BookingStatusRejected, f.store.booking(t, accepted.ID).Status)
	assert.Equal(t, models.BookingStatusCancelled, f.store.booking(t, cancelled.ID).Status)

	assert.ElementsMatch(t, []string{
		models.DriverChannel("driver-1"),
		models.RideChannel(ride.ID),
	}, f.notifier.channels(models.EventRideDeleted))

	updates := f.notifier.channels(models.EventBookingUpdated)
	assert.Contains(t, updates, models.PassengerChannel("passenger-1"))
	assert.Contains(t, updates, models.PassengerChannel("passenger-2"))
	assert.Contains(t, updates, models.BookingChannel(pending.ID))
	assert.Contains(t, updates, models.BookingChannel(accepted.ID))

	_, err = bookings.CreateBooking(ctx, ride.ID, "passenger-4", 1)
	assertKind(t, err, utils.KindNotFound)
}

func TestDeleteRideAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRideService(f)
	ride := f.store.addRide(t, "driver-1", 3)
	booking, err := newBookingService(f).CreateBooking(ctx, ride.ID, "passenger-1", 1)
	require.NoError(t, err)
	before := f.notifier.count()

	assertKind(t, svc.DeleteRide(ctx, ride.ID, ""), utils.KindUnauthenticated)
	assertKind(t, svc.DeleteRide(ctx, ride.ID, "passenger-1"), utils.KindForbidden)
	assertKind(t, svc.DeleteRide(ctx, "ride-missing", "driver-1"), utils.KindNotFound)

	assert.Equal(t, 2, f.store.ride(t, ride.ID).SeatsAvailable)
	assert.Equal(t, models.BookingStatusPending, f.store.booking(t, booking.ID).Status)
	assert.Equal(t, before, f.notifier.count())
}
