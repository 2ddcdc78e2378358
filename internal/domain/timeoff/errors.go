package timeoff

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks a failed read from the time-off store. The check
// cannot answer without the existing requests, so this is an upstream
// failure, not a problem with the proposed range.
var ErrStoreUnavailable = errors.New("time-off store unavailable")

// ValidationError reports a malformed check request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
