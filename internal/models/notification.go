package models

// Realtime event names.
const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventRideDeleted    = "ride.deleted"
	EventRideUpdated    = "ride.updated"
	EventLocationUpdate = "location.update"
	EventMessage        = "message"
	EventMessagesRead   = "messages.read"
)

func BookingChannel(bookingID string) string {
	return "booking:" + bookingID
}

func DriverChannel(driverID string) string {
	return "driver:" + driverID
}

func PassengerChannel(passengerID string) string {
	return "passenger:" + passengerID
}

func RideChannel(rideID string) string {
	return "ride:" + rideID
}
