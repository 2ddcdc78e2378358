package appointment

import (
	"context"
	"time"
)

// Filter narrows appointment listings. Zero fields are ignored.
type Filter struct {
	PatientCode  string
	EmployeeCode string
	RoomCode     string
	Status       Status
	From         time.Time
	To           time.Time
}

// Repository persists appointments. Implementations must surface a storage
// level double-booking (the one-writer-wins constraint) as ErrSlotConflict
// and a missing code as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByCode(ctx context.Context, code string) (*Appointment, error)
	Update(ctx context.Context, appt *Appointment) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Appointment, int, error)
}

// Syncer applies a plan sync command at the treatment-plan collaborator.
type Syncer interface {
	Apply(ctx context.Context, cmd PlanSyncCommand) error
}
