package models

import (
	"time"
)

type RideStatus string

const (
	RideStatusScheduled RideStatus = "scheduled"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
)

var rideStatusOrder = map[RideStatus]int{
	RideStatusScheduled: 0,
	RideStatusOngoing:   1,
	RideStatusCompleted: 2,
}

func (s RideStatus) IsValid() bool {
	_, ok := rideStatusOrder[s]
	return ok
}

// CanTransitionTo allows only forward moves along scheduled -> ongoing -> completed.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	from, ok := rideStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := rideStatusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

type Ride struct {
	ID             string     `json:"id" bson:"_id"`
	DriverID       string     `json:"driverId" bson:"driver_id"`
	VehicleID      string     `json:"vehicleId,omitempty" bson:"vehicle_id,omitempty"`
	SourceLat      float64    `json:"sourceLat" bson:"source_lat"`
	SourceLng      float64    `json:"sourceLng" bson:"source_lng"`
	SourceAddress  string     `json:"sourceAddress" bson:"source_address"`
	DestLat        float64    `json:"destLat" bson:"dest_lat"`
	DestLng        float64    `json:"destLng" bson:"dest_lng"`
	DestAddress    string     `json:"destAddress" bson:"dest_address"`
	DepartureTime  time.Time  `json:"departureTime" bson:"departure_time"`
	SeatsTotal     int        `json:"seatsTotal" bson:"seats_total"`
	SeatsAvailable int        `json:"seatsAvailable" bson:"seats_available"`
	CostPerSeat    float64    `json:"costPerSeat" bson:"cost_per_seat"`
	IsActive       bool       `json:"isActive" bson:"is_active"`
	Status         RideStatus `json:"status" bson:"status"`
	CurrentLat     *float64   `json:"currentLat,omitempty" bson:"current_lat,omitempty"`
	CurrentLng     *float64   `json:"currentLng,omitempty" bson:"current_lng,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" bson:"updated_at"`
}

// SeatsHeld is the number of seats currently reserved by pending or accepted bookings.
func (r *Ride) SeatsHeld() int {
	return r.SeatsTotal - r.SeatsAvailable
}

func (r *Ride) IsBookable() bool {
	return r.IsActive && r.Status == RideStatusScheduled
}

type RideWithStats struct {
	*Ride
	BookingsCount int64 `json:"bookingsCount"`
}
