package handlers

import (
	"unipool/internal/models"
	"unipool/internal/services"
	"unipool/internal/utils"
	"unipool/internal/validators"

	"github.com/gin-gonic/gin"
)

var reviewSort = utils.SortSpec{
	Default: "created_at",
	Order:   "desc",
	Allowed: map[string]string{
		"createdAt": "created_at",
		"rating":    "rating",
	},
}

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req validators.ReviewCreateRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateReviewCreate(&req)) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), &models.Review{
		RideID:     req.RideID,
		ReviewerID: req.ReviewerID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review submitted successfully", review)
}

// GetUserReviews lists reviews received by a user, newest first, with their rating summary
func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID := c.Param("id")
	params := utils.GetPaginationParams(c, reviewSort)

	reviews, total, err := h.reviewService.GetUserReviews(c.Request.Context(), userID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	summary, err := h.reviewService.GetRatingSummary(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}
	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", map[string]interface{}{
		"reviews": reviews,
		"summary": summary,
	}, meta)
}
