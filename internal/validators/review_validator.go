package validators

type ReviewCreateRequest struct {
	RideID     string `json:"rideId" validate:"required,entity_id"`
	ReviewerID string `json:"reviewerId" validate:"required,entity_id"`
	RevieweeID string `json:"revieweeId" validate:"required,entity_id,nefield=ReviewerID"`
	Rating     int    `json:"rating" validate:"required,rating_value"`
	Comment    string `json:"comment" validate:"omitempty,max=500"`
}

func ValidateReviewCreate(req *ReviewCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)
	req.Comment = SanitizeInput(req.Comment)
	return errors
}
