package timeoff

import (
	"context"
	"time"
)

// Repository reads time-off requests owned by the external HR system.
type Repository interface {
	ListByEmployee(ctx context.Context, employeeCode string, from, to time.Time) ([]TimeOffRequest, error)
}
