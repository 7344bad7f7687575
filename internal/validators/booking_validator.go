package validators

import "unipool/internal/utils"

type BookingCreateRequest struct {
	RideID      string `json:"rideId" validate:"required,entity_id"`
	PassengerID string `json:"passengerId" validate:"required,entity_id"`
	SeatsBooked *int   `json:"seatsBooked" validate:"omitempty,seat_count"`
}

// Seats is the requested seat count, one when the field was omitted.
func (r *BookingCreateRequest) Seats() int {
	if r.SeatsBooked == nil {
		return utils.MinSeatsPerBooking
	}
	return *r.SeatsBooked
}

type BookingTransitionRequest struct {
	Status string `json:"status" validate:"required,booking_transition"`
}

type BookingListQuery struct {
	PassengerID string `form:"passengerId" validate:"omitempty,entity_id"`
	RideID      string `form:"rideId" validate:"omitempty,entity_id"`
}

func ValidateBookingCreate(req *BookingCreateRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateBookingList(req *BookingListQuery) ValidationErrors {
	errors := ValidateStruct(req)

	if req.PassengerID == "" && req.RideID == "" {
		errors = append(errors, ValidationError{
			Field:   "passengerId",
			Tag:     "required_without",
			Message: "passengerId or rideId is required",
		})
	}

	return errors
}
