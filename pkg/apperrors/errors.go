package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrTicketNotFound  = errors.New("ticket not found")

	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicatePhone          = errors.New("phone number already registered")
	ErrEventNotBookable        = errors.New("event is not available for booking")
	ErrInsufficientCapacity    = errors.New("insufficient tickets")
	ErrForbidden               = errors.New("admin access required")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrTicketNotActive         = errors.New("only active tickets can be used")
	ErrCodeSpaceExhausted      = errors.New("ticket code space exhausted")
	ErrInternalServerError     = errors.New("internal server error")
)

// InsufficientCapacityError carries the counts the caller needs to render
// "Available: X, Requested: Y". errors.Is matches ErrInsufficientCapacity.
type InsufficientCapacityError struct {
	Available int
	Requested int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient tickets. Available: %d, Requested: %d", e.Available, e.Requested)
}

func (e *InsufficientCapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}
