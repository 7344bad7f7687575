package validators

import (
	"math"
	"time"
)

type RideCreateRequest struct {
	DriverID      string    `json:"driverId" validate:"required,entity_id"`
	VehicleID     string    `json:"vehicleId" validate:"omitempty,entity_id"`
	SourceLat     float64   `json:"sourceLat" validate:"latitude"`
	SourceLng     float64   `json:"sourceLng" validate:"longitude"`
	SourceAddress string    `json:"sourceAddress" validate:"required,min=3,max=255"`
	DestLat       float64   `json:"destLat" validate:"latitude"`
	DestLng       float64   `json:"destLng" validate:"longitude"`
	DestAddress   string    `json:"destAddress" validate:"required,min=3,max=255"`
	DepartureTime time.Time `json:"departureTime" validate:"required"`
	SeatsTotal    int       `json:"seatsTotal" validate:"required,seat_count"`
	CostPerSeat   float64   `json:"costPerSeat" validate:"min=0"`
}

type RideStatusRequest struct {
	Status string `json:"status" validate:"required,ride_status"`
}

type RideLocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

func ValidateRideCreate(req *RideCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	// Validate source and destination are different
	if isSamePoint(req.SourceLat, req.SourceLng, req.DestLat, req.DestLng) {
		errors = append(errors, ValidationError{
			Field:   "destLat",
			Tag:     "distinct",
			Message: "Source and destination must be different",
		})
	}

	return errors
}

func isSamePoint(lat1, lng1, lat2, lng2 float64) bool {
	const epsilon = 0.0001 // roughly 10 meters
	return math.Abs(lat1-lat2) < epsilon && math.Abs(lng1-lng2) < epsilon
}
