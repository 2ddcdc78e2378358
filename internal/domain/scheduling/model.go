package scheduling

import (
	"sort"
	"time"
)

// ServiceRequirement describes one bookable service. Reference data, owned
// by an external catalog; read-only to the scheduling engine.
type ServiceRequirement struct {
	ServiceCode              string  `db:"service_code" json:"service_code"`
	Name                     string  `db:"name" json:"name"`
	DurationMinutes          int     `db:"duration_minutes" json:"duration_minutes"`
	BufferMinutes            int     `db:"buffer_minutes" json:"buffer_minutes"`
	RequiredSpecializationID *string `db:"required_specialization_id" json:"required_specialization_id,omitempty"`
}

// TotalMinutes is the slot time the service consumes: active duration plus
// the idle buffer appended before the next service may start.
func (s ServiceRequirement) TotalMinutes() int {
	return s.DurationMinutes + s.BufferMinutes
}

// RoomCompatibility maps a service code to the rooms able to host it.
type RoomCompatibility map[string][]string

// Intersection returns the rooms compatible with every listed service,
// sorted. A room must host all services of an appointment, not just one.
func (rc RoomCompatibility) Intersection(serviceCodes []string) []string {
	if len(serviceCodes) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, svc := range serviceCodes {
		seen := make(map[string]bool)
		for _, room := range rc[svc] {
			if !seen[room] {
				seen[room] = true
				counts[room]++
			}
		}
	}

	var out []string
	for room, n := range counts {
		if n == len(serviceCodes) {
			out = append(out, room)
		}
	}
	sort.Strings(out)
	return out
}

// TimeSlot is a candidate appointment start with its feasible room set.
// Ephemeral: produced by the resolver, never persisted.
type TimeSlot struct {
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	AvailableRoomCodes []string  `json:"available_room_codes"`
}

// Booking is the read view of an existing reservation (an appointment) used
// for overlap checks. It deliberately carries only the fields conflict
// detection needs.
type Booking struct {
	AppointmentCode  string
	EmployeeCode     string
	ParticipantCodes []string
	RoomCode         string
	Start            time.Time
	End              time.Time
}

// Policy carries the clinic's scheduling policy. The slot grid and the
// shift-duration bounds are business policy, injected from configuration.
type Policy struct {
	GridMinutes   int
	MinShiftHours int
	MaxShiftHours int
}

// DefaultPolicy returns the clinic-wide defaults.
func DefaultPolicy() Policy {
	return Policy{GridMinutes: 15, MinShiftHours: 3, MaxShiftHours: 8}
}

// Grid returns the candidate-generation step.
func (p Policy) Grid() time.Duration {
	return time.Duration(p.GridMinutes) * time.Minute
}

// ShiftWithinBounds reports whether a shift window's length falls inside the
// configured sanity bounds. A window outside the bounds is a roster data
// error and generates no candidates.
func (p Policy) ShiftWithinBounds(length time.Duration) bool {
	return length >= time.Duration(p.MinShiftHours)*time.Hour &&
		length <= time.Duration(p.MaxShiftHours)*time.Hour
}
