package calendar

import (
	"time"

	"github.com/google/uuid"
)

// Role is an employee's clinical role.
type Role string

const (
	RoleDoctor    Role = "DOCTOR"
	RoleAssistant Role = "ASSISTANT"
	RoleOther     Role = "OTHER"
)

// Employee is owned by the external HR system and read-only here.
type Employee struct {
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`
	Role   Role   `db:"role" json:"role"`
	Active bool   `db:"active" json:"active"`
}

// ShiftRecord is one scheduled working interval for one employee on one
// date. Start and end are absolute timestamps, so a shift that crosses
// midnight remains a single contiguous window.
type ShiftRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	EmployeeCode string    `db:"employee_code" json:"employee_code"`
	WorkDate     time.Time `db:"work_date" json:"work_date"`
	ShiftStart   time.Time `db:"shift_start" json:"shift_start"`
	ShiftEnd     time.Time `db:"shift_end" json:"shift_end"`
}

// HolidayDate blocks ordinary shift creation on that date. It does not, by
// itself, block an already-scheduled appointment.
type HolidayDate struct {
	Date time.Time `db:"holiday_date" json:"date"`
	Name string    `db:"name" json:"name"`
}

// ShiftWindow is a normalized working interval. Overlapping shifts for the
// same employee on the same date are merged into their union before queries.
type ShiftWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DateKey formats a timestamp as the calendar-date key used throughout the
// scheduling engine.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthKey formats a timestamp as the (year, month) cache-bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
