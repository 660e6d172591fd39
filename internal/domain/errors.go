package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation error")
	ErrBookingWindowClosed     = errors.New("booking window closed")
	ErrPerRequestLimitExceeded = errors.New("per-request limit exceeded")
	ErrPerUserLimitExceeded    = errors.New("per-user limit exceeded")
	ErrSoldOut                 = errors.New("sold out")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("conflict")
)

// BookingError is an admission rejection. It matches its Kind with errors.Is.
type BookingError struct {
	Kind    error
	Message string
	// Limit is the limit that was hit, zero when not applicable.
	Limit int
}

func (e *BookingError) Error() string {
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Kind
}

func ErrWindowClosed() *BookingError {
	return &BookingError{
		Kind:    ErrBookingWindowClosed,
		Message: "Booking window for this event is now closed.",
	}
}

func ErrRequestLimit(limit int) *BookingError {
	return &BookingError{
		Kind:    ErrPerRequestLimitExceeded,
		Message: fmt.Sprintf("You cannot book more than %d tickets per user.", limit),
		Limit:   limit,
	}
}

func ErrUserLimit(booked, limit int) *BookingError {
	return &BookingError{
		Kind:    ErrPerUserLimitExceeded,
		Message: fmt.Sprintf("You've already booked %d tickets. You cannot book more than %d tickets in total for this event.", booked, limit),
		Limit:   limit,
	}
}

func ErrNoSeats(limit int) *BookingError {
	return &BookingError{
		Kind:    ErrSoldOut,
		Message: "No more seats available for this event.",
		Limit:   limit,
	}
}

// ErrorKind returns the machine-readable name of a taxonomy error, or "" if
// err does not belong to the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrBookingWindowClosed):
		return "BookingWindowClosed"
	case errors.Is(err, ErrPerRequestLimitExceeded):
		return "PerRequestLimitExceeded"
	case errors.Is(err, ErrPerUserLimitExceeded):
		return "PerUserLimitExceeded"
	case errors.Is(err, ErrSoldOut):
		return "SoldOut"
	case errors.Is(err, ErrUnauthenticated):
		return "Unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	}
	return ""
}

// ValidationError wraps field-level validation failures so they match ErrValidation.
type ValidationError struct {
	Err error
}

func NewValidationError(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}
