package services

import (
	"context"
	"math"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"
)

type StatsService interface {
	GetDriverStats(ctx context.Context, driverID string) (*models.DriverStats, error)
}

type statsService struct {
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	reviewRepo  interfaces.ReviewRepository
}

func NewStatsService(
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	reviewRepo interfaces.ReviewRepository,
) StatsService {
	return &statsService{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
	}
}

// GetDriverStats counts accepted bookings only; earnings are accepted seats
// times each ride's cost per seat.
func (s *statsService) GetDriverStats(ctx context.Context, driverID string) (*models.DriverStats, error) {
	rides, err := s.rideRepo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, utils.AsAppError(err)
	}

	stats := &models.DriverStats{TotalRides: int64(len(rides))}
	ids := make([]string, 0, len(rides))
	for _, ride := range rides {
		ids = append(ids, ride.ID)
		if ride.IsActive {
			stats.ActiveRides++
		}
	}

	tallies, err := s.bookingRepo.TallyByRides(ctx, ids)
	if err != nil {
		return nil, utils.AsAppError(err)
	}

	for _, ride := range rides {
		tally, ok := tallies[ride.ID]
		if !ok {
			continue
		}
		stats.TotalBookings += tally.Accepted
		stats.TotalEarnings += float64(tally.SeatsAccepted) * ride.CostPerSeat
	}

	summary, err := s.reviewRepo.GetRatingSummary(ctx, driverID)
	if err != nil {
		return nil, utils.AsAppError(err)
	}
	stats.AverageRating = math.Round(summary.Average*10) / 10

	return stats, nil
}
