package appointment

import (
	"context"
	"time"
)

// movable reports whether an appointment may be delayed or rescheduled.
func movable(status Status) bool {
	return status == StatusScheduled || status == StatusCheckedIn
}

// Delay moves an appointment to a strictly later start on the same day with
// the same staff and room. The booked duration is preserved exactly; the
// services did not change, so the length is carried over rather than
// recomputed. The new window is re-checked against current bookings before
// the move commits.
func (s *Service) Delay(ctx context.Context, code string, newStart time.Time, reasonCode, notes string) (*Appointment, error) {
	appt, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !movable(appt.Status) {
		return nil, ErrNotDelayable
	}
	if !newStart.After(appt.StartTime) {
		return nil, &DelayTimeError{Current: appt.StartTime, Requested: newStart}
	}

	newEnd := newStart.Add(appt.Duration())
	if err := s.checkWindow(ctx, appt.EmployeeCode, appt.ParticipantCodes, appt.RoomCode, newStart, newEnd, appt.Code); err != nil {
		return nil, err
	}

	updated := *appt
	updated.StartTime = newStart
	updated.EndTime = newEnd
	if reasonCode != "" {
		updated.ReasonCode = &reasonCode
	}
	if notes != "" {
		updated.Notes = &notes
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RescheduleResult carries both halves of a completed reschedule.
type RescheduleResult struct {
	Cancelled *Appointment `json:"cancelled"`
	Created   *Appointment `json:"created"`
}

// Reschedule cancels the appointment and creates a replacement carrying the
// same patient, services, and participants at the new start, in a different
// room when one is given. Both writes run in one transaction: either the old
// appointment is cancelled and the new one exists, or neither happened.
//
// Without transactional storage the pair degrades to sequential writes; a
// create failure then leaves the cancellation committed, and the returned
// RescheduleError says so explicitly rather than hiding the half-applied
// state.
func (s *Service) Reschedule(ctx context.Context, code string, newStart time.Time, newRoomCode string) (*RescheduleResult, error) {
	result := &RescheduleResult{}

	err := s.runTx(ctx, func(ctx context.Context) error {
		appt, err := s.repo.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if !movable(appt.Status) {
			return ErrNotReschedulable
		}

		// The cancellation's plan-sync command is dropped: the replacement
		// keeps the plan link, so the plan item's work is still booked and
		// its lifecycle continues with the new appointment. The net effect
		// of a reschedule on the plan item is nothing.
		cancelled, _, err := Transition(*appt, StatusCancelled, ReasonRescheduled, "", time.Now().UTC())
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, &cancelled); err != nil {
			return err
		}

		roomCode := appt.RoomCode
		if newRoomCode != "" {
			roomCode = newRoomCode
		}
		newEnd := newStart.Add(appt.Duration())

		if err := s.checkWindow(ctx, appt.EmployeeCode, appt.ParticipantCodes, roomCode, newStart, newEnd, appt.Code); err != nil {
			return &RescheduleError{AppointmentCode: code, Cancelled: !s.txCapable, Err: err}
		}

		replacement := &Appointment{
			Code:                    newCode(),
			PatientCode:             appt.PatientCode,
			EmployeeCode:            appt.EmployeeCode,
			ParticipantCodes:        appt.ParticipantCodes,
			RoomCode:                roomCode,
			ServiceCodes:            appt.ServiceCodes,
			Status:                  StatusScheduled,
			StartTime:               newStart,
			EndTime:                 newEnd,
			Notes:                   appt.Notes,
			LinkedTreatmentPlanCode: appt.LinkedTreatmentPlanCode,
		}
		if err := s.repo.Create(ctx, replacement); err != nil {
			return &RescheduleError{AppointmentCode: code, Cancelled: !s.txCapable, Err: err}
		}

		result.Cancelled = &cancelled
		result.Created = replacement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
