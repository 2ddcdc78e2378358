package appointment

import (
	"fmt"
	"time"
)

// Transition applies one status change to a copy of the appointment and
// returns the updated copy. The input is never mutated, so a failed
// transition leaves the caller's appointment exactly as it was.
//
// For an appointment linked to a treatment-plan item, moving into
// IN_PROGRESS, COMPLETED, or CANCELLED also returns the sync command the
// caller must hand to the plan collaborator after persisting. The command's
// outcome is not this function's concern.
func Transition(appt Appointment, target Status, reasonCode, notes string, now time.Time) (Appointment, *PlanSyncCommand, error) {
	if !target.Valid() {
		return appt, nil, fmt.Errorf("unknown status %q", target)
	}
	if target == appt.Status {
		return appt, nil, ErrNoOpTransition
	}
	if !appt.Status.CanTransitionTo(target) {
		return appt, nil, &TransitionError{From: appt.Status, To: target}
	}
	if target == StatusCancelled && reasonCode == "" {
		return appt, nil, ErrReasonRequired
	}

	updated := appt
	updated.Status = target
	if reasonCode != "" {
		updated.ReasonCode = &reasonCode
	}
	if notes != "" {
		updated.Notes = &notes
	}

	switch target {
	case StatusCheckedIn:
		t := now
		updated.ActualStartTime = &t
	case StatusCompleted:
		t := now
		updated.ActualEndTime = &t
	}

	if updated.Status != target {
		// Unreachable unless the switch above is broken; a status
		// mismatch must never leave this function silently.
		return appt, nil, fmt.Errorf("transition produced status %s, wanted %s", updated.Status, target)
	}

	return updated, planSyncFor(updated, target), nil
}

// planSyncFor returns the plan sync command a transition emits, or nil when
// the appointment has no linked plan item or the target status does not
// affect the plan.
func planSyncFor(appt Appointment, target Status) *PlanSyncCommand {
	if appt.LinkedTreatmentPlanCode == nil || *appt.LinkedTreatmentPlanCode == "" {
		return nil
	}

	var action SyncAction
	switch target {
	case StatusInProgress, StatusCompleted:
		action = SyncAdvance
	case StatusCancelled:
		action = SyncCancel
	default:
		return nil
	}

	return &PlanSyncCommand{
		PlanCode:        *appt.LinkedTreatmentPlanCode,
		AppointmentCode: appt.Code,
		Action:          action,
	}
}
