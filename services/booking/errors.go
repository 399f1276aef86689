package booking

import (
	"errors"
	"fmt"
)

// Error codes surfaced to clients.
const (
	CodeUnauthenticated       = "unauthenticated"
	CodeValidationRejected    = "validationRejected"
	CodeTransientNetworkError = "transientNetworkError"
	CodeEmptyCompatibilitySet = "emptyCompatibilitySet"
)

// BookingError is a failure at the network boundary, or the empty
// compatibility warning. Code is one of the Code* constants.
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewUnauthenticatedError(msg string) error {
	return &BookingError{Code: CodeUnauthenticated, Message: msg}
}

func NewValidationRejectedError(msg string, err error) error {
	return &BookingError{Code: CodeValidationRejected, Message: msg, Err: err}
}

func NewTransientNetworkError(msg string, err error) error {
	return &BookingError{Code: CodeTransientNetworkError, Message: msg, Err: err}
}

// ErrEmptyCompatibilitySet blocks the stylist step when no single stylist
// covers every selected service.
var ErrEmptyCompatibilitySet error = &BookingError{
	Code:    CodeEmptyCompatibilitySet,
	Message: "no single stylist offers all selected services; change your service selection",
}

// ErrorCode returns the BookingError code carried by err, or "".
func ErrorCode(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsCode reports whether err carries the given BookingError code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Guard and selection errors. Each has its own message so clients never
// have to show a generic failure.
var (
	ErrCategoryRequired    = errors.New("please select a category")
	ErrServicesRequired    = errors.New("please select at least one service")
	ErrDateTimeRequired    = errors.New("please select a date and time")
	ErrStaleTime           = errors.New("the selected time is no longer valid for this date, services and stylist; pick a time again")
	ErrAtFirstStep         = errors.New("already at the first step")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownService      = errors.New("unknown service")
	ErrUnknownStylist      = errors.New("unknown stylist")
	ErrIncompatibleStylist = errors.New("this stylist does not offer all selected services")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDateOutOfRange      = errors.New("date is outside the bookable window")
	ErrSlotUnavailable     = errors.New("the selected time is not available")
	ErrAvailabilityPending = errors.New("availability is still loading for the current selection")
	ErrStaleAvailability   = errors.New("availability response is stale and was discarded")
	ErrSubmissionInFlight  = errors.New("a booking submission is already in progress")
	ErrAlreadyBooked       = errors.New("this booking session is already complete")
	ErrNotAtConfirm        = errors.New("the booking can only be submitted from the confirm step")
	ErrSessionNotFound     = errors.New("booking session not found or expired")
	ErrSessionConflict     = errors.New("booking session was modified concurrently")
)
