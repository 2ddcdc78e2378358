package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusAbsent     Status = "ABSENT"
)

// allowedTransitions is the fixed transition table keyed by current status.
// A status absent from a row cannot be reached from it; an empty row is a
// dead end.
var allowedTransitions = map[Status][]Status{
	StatusScheduled:  {StatusCheckedIn, StatusCancelled, StatusAbsent},
	StatusCheckedIn:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusAbsent:     {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether the table permits moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted. ABSENT also
// has an empty transition row but is not terminal in the business sense; it
// marks a no-show, and the table alone keeps it a dead end.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label returns the display label for a status. The switch is total over the
// declared statuses so adding one without a label does not compile quietly
// into an empty string at a call site that switches on it.
func (s Status) Label() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusCheckedIn:
		return "Checked In"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusAbsent:
		return "Absent"
	default:
		return string(s)
	}
}

// Color returns the display color key for a status.
func (s Status) Color() string {
	switch s {
	case StatusScheduled:
		return "blue"
	case StatusCheckedIn:
		return "cyan"
	case StatusInProgress:
		return "orange"
	case StatusCompleted:
		return "green"
	case StatusCancelled:
		return "red"
	case StatusAbsent:
		return "gray"
	default:
		return "gray"
	}
}

// ReasonRescheduled marks the cancellation half of a reschedule.
const ReasonRescheduled = "RESCHEDULED"

// Appointment is a confirmed booking. Created once; afterwards mutated only
// through lifecycle transitions, delay, or reschedule.
type Appointment struct {
	ID                      uuid.UUID  `db:"id" json:"id"`
	Code                    string     `db:"code" json:"code"`
	PatientCode             string     `db:"patient_code" json:"patient_code"`
	EmployeeCode            string     `db:"employee_code" json:"employee_code"`
	ParticipantCodes        []string   `db:"-" json:"participant_codes,omitempty"`
	RoomCode                string     `db:"room_code" json:"room_code"`
	ServiceCodes            []string   `db:"service_codes" json:"service_codes"`
	Status                  Status     `db:"status" json:"status"`
	StartTime               time.Time  `db:"start_time" json:"start_time"`
	EndTime                 time.Time  `db:"end_time" json:"end_time"`
	ActualStartTime         *time.Time `db:"actual_start_time" json:"actual_start_time,omitempty"`
	ActualEndTime           *time.Time `db:"actual_end_time" json:"actual_end_time,omitempty"`
	ReasonCode              *string    `db:"reason_code" json:"reason_code,omitempty"`
	Notes                   *string    `db:"notes" json:"notes,omitempty"`
	LinkedTreatmentPlanCode *string    `db:"linked_treatment_plan_code" json:"linked_treatment_plan_code,omitempty"`
	VersionID               int        `db:"version_id" json:"version_id"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

// Duration returns the booked length, end minus start.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// StatusLabel and StatusColor are convenience accessors for API consumers
// rendering appointment lists.
func (a *Appointment) StatusLabel() string { return a.Status.Label() }
func (a *Appointment) StatusColor() string { return a.Status.Color() }

// SyncAction tells the treatment-plan collaborator what to do with the plan
// item linked to an appointment.
type SyncAction string

const (
	SyncAdvance SyncAction = "ADVANCE"
	SyncCancel  SyncAction = "CANCEL"
)

// PlanSyncCommand is the side-effect command a lifecycle transition emits
// for an appointment linked to a treatment-plan item. The command is applied
// after the appointment's own state change commits; its failure never rolls
// that change back.
type PlanSyncCommand struct {
	PlanCode        string     `json:"plan_code"`
	AppointmentCode string     `json:"appointment_code"`
	Action          SyncAction `json:"action"`
}
