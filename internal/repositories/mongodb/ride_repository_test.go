package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func sampleRide() *models.Ride {
	return &models.Ride{
		ID:             "ride-1",
		DriverID:       "driver-1",
		SourceAddress:  "FAST NUCES",
		DestAddress:    "Blue Area",
		DepartureTime:  time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC),
		SeatsTotal:     3,
		SeatsAvailable: 1,
		CostPerSeat:    250,
		IsActive:       true,
		Status:         models.RideStatusScheduled,
	}
}

func TestRideRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ride := &models.Ride{DriverID: "driver-1", SeatsTotal: 2, SeatsAvailable: 2}
		require.NoError(t, repo.Create(context.Background(), ride))

		assert.NotEmpty(t, ride.ID)
		assert.False(t, ride.CreatedAt.IsZero())
		assert.Equal(t, "insert", mt.GetStartedEvent().CommandName)
	})

	mt.Run("get by id maps missing document to not found", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "unipool.rides", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.True(t, errors.Is(err, utils.ErrNotFound))
	})

	mt.Run("get by id decodes ride", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "unipool.rides", mtest.FirstBatch, toDoc(t, sampleRide())))

		ride, err := repo.GetByID(context.Background(), "ride-1")
		require.NoError(t, err)
		assert.Equal(t, "driver-1", ride.DriverID)
		assert.Equal(t, 2, ride.SeatsHeld())
	})

	mt.Run("reserve seats sends guarded decrement", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		updated := sampleRide()
		updated.SeatsAvailable = 0
		mt.AddMockResponses(findAndModifyResponse(toDoc(t, updated)))

		ride, err := repo.ReserveSeats(context.Background(), "ride-1", 1)
		require.NoError(t, err)
		assert.Equal(t, 0, ride.SeatsAvailable)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, int32(1), cmd.Lookup("query", "seats_available", "$gte").Int32())
		assert.True(t, cmd.Lookup("query", "is_active").Boolean())
		assert.Equal(t, "scheduled", cmd.Lookup("query", "status").StringValue())
		assert.Equal(t, int32(-1), cmd.Lookup("update", "$inc", "seats_available").Int32())
	})

	mt.Run("reserve seats returns condition not met when guard fails", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.ReserveSeats(context.Background(), "ride-1", 5)
		assert.ErrorIs(t, err, interfaces.ErrConditionNotMet)
	})

	mt.Run("release seats is bounded by seats total", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		released := sampleRide()
		released.SeatsAvailable = 3
		mt.AddMockResponses(findAndModifyResponse(toDoc(t, released)))

		ride, err := repo.ReleaseSeats(context.Background(), "ride-1", 2)
		require.NoError(t, err)
		assert.Equal(t, 3, ride.SeatsAvailable)

		cmd := mt.GetStartedEvent().Command
		_, err = cmd.LookupErr("query", "$expr", "$lte")
		assert.NoError(t, err)
		assert.Equal(t, int32(2), cmd.Lookup("update", "$inc", "seats_available").Int32())
	})

	mt.Run("release seats reports imbalance", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.ReleaseSeats(context.Background(), "ride-1", 9)
		assert.ErrorIs(t, err, interfaces.ErrConditionNotMet)
	})

	mt.Run("update status completes and deactivates", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		done := sampleRide()
		done.Status = models.RideStatusCompleted
		done.IsActive = false
		mt.AddMockResponses(findAndModifyResponse(toDoc(t, done)))

		ride, err := repo.UpdateStatus(context.Background(), "ride-1", models.RideStatusOngoing, models.RideStatusCompleted)
		require.NoError(t, err)
		assert.False(t, ride.IsActive)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "ongoing", cmd.Lookup("query", "status").StringValue())
		assert.False(t, cmd.Lookup("update", "$set", "is_active").Boolean())
	})

	mt.Run("update location on missing ride is not found", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.UpdateLocation(context.Background(), "ghost", 33.6, 73.0)
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	mt.Run("delete missing ride is not found", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), "ghost")
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	mt.Run("list active rides with total", func(mt *mtest.T) {
		repo := NewRideRepository(mt.DB)
		first := sampleRide()
		second := sampleRide()
		second.ID = "ride-2"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "unipool.rides", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
			mtest.CreateCursorResponse(0, "unipool.rides", mtest.FirstBatch, toDoc(t, first), toDoc(t, second)),
		)

		params := &utils.PaginationParams{Page: 1, PageSize: 10, Sort: "departure_time", Order: "asc"}
		rides, total, err := repo.List(context.Background(), interfaces.RideFilter{ActiveOnly: true}, params)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, rides, 2)
		assert.Equal(t, "ride-2", rides[1].ID)
	})
}
