package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound means no appointment carries the requested code.
	ErrNotFound = errors.New("appointment not found")

	// ErrNoOpTransition rejects a transition whose target equals the
	// current status. Callers must treat it as a user error, not a
	// silent success.
	ErrNoOpTransition = errors.New("appointment is already in the requested status")

	// ErrReasonRequired rejects a cancellation without a reason code.
	ErrReasonRequired = errors.New("cancellation requires a reason code")

	// ErrSlotConflict marks a commit-time collision with another booking,
	// either detected by the pre-commit re-check or surfaced by the
	// one-writer-wins constraint in storage.
	ErrSlotConflict = errors.New("slot conflicts with an existing booking")

	// ErrInvalidDelayTime rejects a delay whose new start is not strictly
	// later than the current one.
	ErrInvalidDelayTime = errors.New("delayed start must be strictly later than the current start")

	// ErrNotDelayable and ErrNotReschedulable gate the move operations:
	// only scheduled or checked-in appointments can be moved.
	ErrNotDelayable     = errors.New("only scheduled or checked-in appointments can be delayed")
	ErrNotReschedulable = errors.New("only scheduled or checked-in appointments can be rescheduled")

	// ErrPartialSideEffect means the appointment's own state change
	// committed but the linked treatment-plan sync did not. Reported for
	// operator follow-up; never rolled back.
	ErrPartialSideEffect = errors.New("appointment updated but treatment plan sync failed")
)

// ValidationError reports a missing required field on a booking request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return e.Field + " is required" }

// TransitionError reports a transition not present in the allowed table,
// with both states so callers can render a precise message.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// DelayTimeError carries the current and requested start times of a
// rejected delay.
type DelayTimeError struct {
	Current   time.Time
	Requested time.Time
}

func (e *DelayTimeError) Error() string {
	return fmt.Sprintf("delay to %s rejected, current start is %s",
		e.Requested.Format(time.RFC3339), e.Current.Format(time.RFC3339))
}

func (e *DelayTimeError) Is(target error) bool { return target == ErrInvalidDelayTime }

// ConflictError names the bookings colliding with a requested window.
type ConflictError struct {
	Start            time.Time
	End              time.Time
	ConflictingCodes []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("window %s to %s conflicts with %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339),
		strings.Join(e.ConflictingCodes, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrSlotConflict }

// PartialSideEffectError wraps the sync failure that followed a committed
// transition. The appointment inside the result is valid and persisted.
type PartialSideEffectError struct {
	Command PlanSyncCommand
	Err     error
}

func (e *PartialSideEffectError) Error() string {
	return fmt.Sprintf("appointment %s committed but plan %s sync (%s) failed: %v",
		e.Command.AppointmentCode, e.Command.PlanCode, e.Command.Action, e.Err)
}

func (e *PartialSideEffectError) Unwrap() error { return e.Err }

func (e *PartialSideEffectError) Is(target error) bool { return target == ErrPartialSideEffect }

// RescheduleError reports a reschedule that failed partway. When the
// enclosing transaction rolled both halves back, Cancelled is false and the
// original appointment is untouched; a true Cancelled means the cancellation
// committed without a replacement and needs operator attention.
type RescheduleError struct {
	AppointmentCode string
	Cancelled       bool
	Err             error
}

func (e *RescheduleError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("reschedule of %s failed after cancellation committed: %v", e.AppointmentCode, e.Err)
	}
	return fmt.Sprintf("reschedule of %s failed, original appointment unchanged: %v", e.AppointmentCode, e.Err)
}

func (e *RescheduleError) Unwrap() error { return e.Err }
