package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrNoServices rejects a slot or booking request without services.
	ErrNoServices = errors.New("at least one service is required")

	// ErrNoAvailability marks a valid request for which no bookable window
	// exists.
	ErrNoAvailability = errors.New("no available time slots")
)

// DurationError reports a service definition whose minutes cannot produce a
// valid slot length, a non-positive duration or a negative buffer. This is a
// data error: the whole computation fails rather than silently producing
// zero-length or shortened slots.
type DurationError struct {
	ServiceCode string
	Field       string
	Minutes     int
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("service %s has invalid %s of %d minutes", e.ServiceCode, e.Field, e.Minutes)
}

// UnknownServiceError reports a requested service code with no definition.
type UnknownServiceError struct {
	ServiceCode string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service code %s", e.ServiceCode)
}
