package timeoff

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the approval state of a time-off request. The approval
// lifecycle itself is owned by the HR collaborator; scheduling only reads it.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Blocks reports whether a request in this state counts against scheduling.
// A rejected request holds nothing.
func (s RequestStatus) Blocks() bool {
	return s == StatusPending || s == StatusApproved
}

// TimeOffRequest is a date-granular leave range for one employee. Start and
// end dates are inclusive.
type TimeOffRequest struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	EmployeeCode string        `db:"employee_code" json:"employee_code"`
	StartDate    time.Time     `db:"start_date" json:"start_date"`
	EndDate      time.Time     `db:"end_date" json:"end_date"`
	Status       RequestStatus `db:"status" json:"status"`
	Reason       string        `db:"reason" json:"reason"`
}
