package utils

import "time"

// Application Constants
const (
	AppName    = "UniPool"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Identity
	HeaderUserID       = "x-user-id"
	HeaderUserIDLegacy = "x_user_id"
	ContextUserID      = "user_id"
	ContextRequestID   = "request_id"

	// Booking limits
	MinSeatsPerBooking = 1
	MaxSeatsPerRide    = 8

	// Chat
	MaxMessageLength = 2000

	// Geocoding
	MinGeocodeQueryLength = 3
	GeocodeCacheTTL       = 24 * time.Hour
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInternalServer   = "internal server error"
	ErrValidationFailed = "validation failed"
	ErrMissingIdentity  = "Missing user identity"
)

// Resource names used in not found messages
const (
	ResourceRide    = "Ride"
	ResourceBooking = "Booking"
)

// Cache Keys
const (
	CacheGeocodePrefix = "geocode:"
	CacheReversePrefix = "geocode:reverse:"
)
