package treatmentplan

import (
	"context"
	"errors"
)

// ErrItemNotFound means no plan item matches the lookup.
var ErrItemNotFound = errors.New("treatment plan item not found")

// Repository persists plan items.
type Repository interface {
	// GetByPlanAndAppointment resolves an item through the indexed
	// appointment back-reference.
	GetByPlanAndAppointment(ctx context.Context, planCode, appointmentCode string) (*PlanItem, error)
	// FindByAppointment scans across plans for any item referencing the
	// appointment. Slow path; used only for link repair.
	FindByAppointment(ctx context.Context, appointmentCode string) (*PlanItem, error)
	UpdateStatus(ctx context.Context, item *PlanItem) error
	RelinkPlan(ctx context.Context, item *PlanItem, planCode string) error
}
