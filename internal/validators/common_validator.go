package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"unipool/internal/models"
	"unipool/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var entityIDRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

func init() {
	validate = validator.New()

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Register custom validation functions
	validate.RegisterValidation("entity_id", validateEntityID)
	validate.RegisterValidation("booking_transition", validateBookingTransition)
	validate.RegisterValidation("ride_status", validateRideStatus)
	validate.RegisterValidation("message_type", validateMessageType)
	validate.RegisterValidation("rating_value", validateRatingValue)
	validate.RegisterValidation("seat_count", validateSeatCount)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into the field -> message map used in API errors.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "body", Tag: "invalid", Message: err.Error()}}
	}

	for _, err := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
			Message: getErrorMessage(err),
		})
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", err.Field(), err.Param())
	case "latitude":
		return "Latitude must be between -90 and 90"
	case "longitude":
		return "Longitude must be between -180 and 180"
	case "entity_id":
		return "Invalid ID format"
	case "booking_transition":
		return "Status must be one of accepted, rejected, cancelled"
	case "ride_status":
		return "Status must be one of scheduled, ongoing, completed"
	case "message_type":
		return "Message type must be one of text, image, file"
	case "rating_value":
		return "Rating must be between 1 and 5"
	case "seat_count":
		return fmt.Sprintf("%s must be between %d and %d", err.Field(), utils.MinSeatsPerBooking, utils.MaxSeatsPerRide)
	case "url":
		return "Invalid URL"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// Custom validation functions
func validateEntityID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	return entityIDRegex.MatchString(value)
}

func validateBookingTransition(fl validator.FieldLevel) bool {
	return models.BookingStatus(fl.Field().String()).IsTransitionTarget()
}

func validateRideStatus(fl validator.FieldLevel) bool {
	return models.RideStatus(fl.Field().String()).IsValid()
}

func validateMessageType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.MessageType(value).IsValid()
}

func validateRatingValue(fl validator.FieldLevel) bool {
	rating := fl.Field().Int()
	return rating >= 1 && rating <= 5
}

func validateSeatCount(fl validator.FieldLevel) bool {
	seats := fl.Field().Int()
	return seats >= utils.MinSeatsPerBooking && seats <= utils.MaxSeatsPerRide
}

func IsValidEntityID(id string) bool {
	return entityIDRegex.MatchString(id)
}

func SanitizeInput(input string) string {
	// Remove HTML tags and trim whitespace
	htmlRegex := regexp.MustCompile(`<[^>]*>`)
	cleaned := htmlRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
