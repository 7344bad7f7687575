package services

import (
	"context"
	"errors"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"
)

type ReviewService interface {
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	GetUserReviews(ctx context.Context, userID string, params *utils.PaginationParams) ([]*models.Review, int64, error)
	GetRatingSummary(ctx context.Context, userID string) (*models.RatingSummary, error)
}

type reviewService struct {
	reviewRepo interfaces.ReviewRepository
	rideRepo   interfaces.RideRepository
}

func NewReviewService(reviewRepo interfaces.ReviewRepository, rideRepo interfaces.RideRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		rideRepo:   rideRepo,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"rating": "Rating must be between 1 and 5",
		})
	}
	if review.ReviewerID == review.RevieweeID {
		return nil, utils.NewValidationError("You cannot review yourself")
	}

	if _, err := s.rideRepo.GetByID(ctx, review.RideID); err != nil {
		return nil, translateError(err, utils.ResourceRide)
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewValidationError("You have already reviewed this user for this ride")
		}
		return nil, utils.AsAppError(err)
	}

	return review, nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID string, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	reviews, total, err := s.reviewRepo.GetByReviewee(ctx, userID, params)
	if err != nil {
		return nil, 0, utils.AsAppError(err)
	}
	return reviews, total, nil
}

func (s *reviewService) GetRatingSummary(ctx context.Context, userID string) (*models.RatingSummary, error) {
	summary, err := s.reviewRepo.GetRatingSummary(ctx, userID)
	if err != nil {
		return nil, utils.AsAppError(err)
	}
	return summary, nil
}
