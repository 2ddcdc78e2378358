package calendar

import (
	"context"
	"time"
)

type ShiftRepository interface {
	ListByEmployee(ctx context.Context, employeeCode string, from, to time.Time) ([]ShiftRecord, error)
}

type HolidayRepository interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]HolidayDate, error)
}

type EmployeeRepository interface {
	GetByCode(ctx context.Context, code string) (*Employee, error)
}
