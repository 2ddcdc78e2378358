package treatmentplan

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the lifecycle state of one plan item.
type ItemStatus string

const (
	ItemPlanned    ItemStatus = "PLANNED"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemCompleted  ItemStatus = "COMPLETED"
	ItemCancelled  ItemStatus = "CANCELLED"
)

// Advanced returns the next state on an advance command. COMPLETED and
// CANCELLED do not move.
func (s ItemStatus) Advanced() ItemStatus {
	switch s {
	case ItemPlanned:
		return ItemInProgress
	case ItemInProgress:
		return ItemCompleted
	default:
		return s
	}
}

// PlanItem is one step of a treatment plan. AppointmentCode is the indexed
// back-reference from the appointment that books this step; it is the
// primary lookup path for sync commands.
type PlanItem struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PlanCode        string     `db:"plan_code" json:"plan_code"`
	PatientCode     string     `db:"patient_code" json:"patient_code"`
	ServiceCode     string     `db:"service_code" json:"service_code"`
	Status          ItemStatus `db:"status" json:"status"`
	AppointmentCode *string    `db:"appointment_code" json:"appointment_code,omitempty"`
	SortOrder       int        `db:"sort_order" json:"sort_order"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
