package calendar

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a failed fetch from an upstream shift or holiday
// source. Callers must treat this as "data not loaded", never as "no shift".
var ErrUnavailable = errors.New("calendar source unavailable")

// UnavailableError reports which upstream source failed.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("calendar source %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
