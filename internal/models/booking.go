package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// SeatHoldingStatuses are the statuses that keep seats reserved on a ride.
var SeatHoldingStatuses = []BookingStatus{BookingStatusPending, BookingStatusAccepted}

func (s BookingStatus) HoldsSeats() bool {
	return s == BookingStatusPending || s == BookingStatusAccepted
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled
}

// IsTransitionTarget reports whether a caller may request this status.
func (s BookingStatus) IsTransitionTarget() bool {
	return s == BookingStatusAccepted || s == BookingStatusRejected || s == BookingStatusCancelled
}

// ReleasesSeats reports whether moving into this status returns seats to the ride.
func (s BookingStatus) ReleasesSeats() bool {
	return s.IsTerminal()
}

// CanTransition encodes the booking lifecycle:
//
//	pending  -> accepted | rejected | cancelled
//	accepted -> cancelled
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusAccepted || next == BookingStatusRejected || next == BookingStatusCancelled
	case BookingStatusAccepted:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

type Booking struct {
	ID          string           `json:"id" bson:"_id"`
	RideID      string           `json:"rideId" bson:"ride_id"`
	PassengerID string           `json:"passengerId" bson:"passenger_id"`
	Status      BookingStatus    `json:"status" bson:"status"`
	SeatsBooked int              `json:"seatsBooked" bson:"seats_booked"`
	UnreadCount map[string]int   `json:"unreadCount,omitempty" bson:"unread_count,omitempty"`
	LastMessage *MessageSnapshot `json:"lastMessage,omitempty" bson:"last_message,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" bson:"updated_at"`
}

type MessageSnapshot struct {
	Content     string      `json:"content" bson:"content"`
	SenderID    string      `json:"senderId" bson:"sender_id"`
	MessageType MessageType `json:"messageType" bson:"message_type"`
	Timestamp   time.Time   `json:"timestamp" bson:"timestamp"`
}

type BookingWithRide struct {
	*Booking
	Ride *Ride `json:"ride,omitempty"`
}

// BookingEvent is the payload published on booking channels.
type BookingEvent struct {
	Booking *Booking `json:"booking"`
	Ride    *Ride    `json:"ride,omitempty"`
}
