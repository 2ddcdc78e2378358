package scheduling

import (
	"context"
	"time"

	"github.com/cliniq/cliniq/internal/domain/calendar"
)

// CalendarSource provides availability snapshots for a set of employees.
type CalendarSource interface {
	BuildIndex(ctx context.Context, employeeCodes []string, from, to time.Time) (*calendar.Index, error)
}

// ServiceRepository serves service definitions and room compatibility from
// the external reference-data catalog.
type ServiceRepository interface {
	GetDefinitions(ctx context.Context, serviceCodes []string) ([]ServiceRequirement, error)
	GetRoomCompatibility(ctx context.Context, serviceCodes []string) (RoomCompatibility, error)
}

// BookingReader lists existing reservations overlapping a time range.
type BookingReader interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]Booking, error)
}
