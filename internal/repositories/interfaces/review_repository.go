package interfaces

import (
	"context"

	"unipool/internal/models"
	"unipool/internal/utils"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByReviewee(ctx context.Context, revieweeID string, params *utils.PaginationParams) ([]*models.Review, int64, error)
	GetRatingSummary(ctx context.Context, revieweeID string) (*models.RatingSummary, error)
}
