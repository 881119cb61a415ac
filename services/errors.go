package services

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrMentorNotFound       = errors.New("mentor not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAvailabilityNotFound = errors.New("availability not found")

	ErrPastDate     = errors.New("requested date must be in the future")
	ErrTimeConflict = errors.New("the requested time slot conflicts with an existing booking")

	ErrCancellationWindow = errors.New("bookings can only be cancelled at least 2 hours before the session starts")

	ErrInvalidTimeSlot = errors.New("time slot start must be before its end")
)
