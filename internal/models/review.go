package models

import (
	"time"
)

type Review struct {
	ID         string    `json:"id" bson:"_id"`
	RideID     string    `json:"rideId" bson:"ride_id"`
	ReviewerID string    `json:"reviewerId" bson:"reviewer_id"`
	RevieweeID string    `json:"revieweeId" bson:"reviewee_id"`
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment" bson:"comment"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

type RatingSummary struct {
	Average float64 `json:"average" bson:"average"`
	Count   int64   `json:"count" bson:"count"`
}

type DriverStats struct {
	TotalRides    int64   `json:"totalRides"`
	ActiveRides   int64   `json:"activeRides"`
	TotalBookings int64   `json:"totalBookings"`
	TotalEarnings float64 `json:"totalEarnings"`
	AverageRating float64 `json:"averageRating"`
}
