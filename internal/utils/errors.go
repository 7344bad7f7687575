package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindCapacityExceeded  ErrorKind = "capacity_exceeded"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindForbidden         ErrorKind = "forbidden"
	KindUpstream          ErrorKind = "upstream"
	KindInternal          ErrorKind = "internal"
)

// Sentinels for errors.Is checks across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrLedgerImbalance   = errors.New("seat ledger out of balance")
)

type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel so callers can test errors.Is(err, utils.ErrNotFound).
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrCapacityExceeded:
		return e.Kind == KindCapacityExceeded
	case ErrInvalidTransition:
		return e.Kind == KindInvalidTransition
	case ErrUnauthorized:
		return e.Kind == KindUnauthenticated || e.Kind == KindForbidden
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindCapacityExceeded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable is true only for infrastructure failures.
func (e *AppError) Retryable() bool {
	return e.Kind == KindInternal || e.Kind == KindUpstream
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

func NewValidationErrorWithDetails(message string, details map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message, Details: details}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

func NewCapacityError(available int) *AppError {
	return &AppError{
		Kind:    KindCapacityExceeded,
		Code:    "CAPACITY_EXCEEDED",
		Message: fmt.Sprintf("Only %d seats available", available),
	}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Code: "INVALID_TRANSITION", Message: message}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Code: "UNAUTHORIZED", Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Code: "UPSTREAM_ERROR", Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// AsAppError unwraps err into an AppError, classifying unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, ErrNotFound) {
		return &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: err.Error(), Err: err}
	}
	return NewInternalError(ErrInternalServer, err)
}
