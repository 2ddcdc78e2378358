package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cliniq/cliniq/internal/domain/calendar"
)

// Resolver computes the bookable start times for a multi-service appointment
// on one date, given the rostered shifts of everyone involved, the services'
// durations, room compatibility, and the bookings already on file.
//
// Resolution is a pure read: abandoning an in-flight call leaves no external
// state behind. Results are deterministic and strictly ascending for a fixed
// input; no guarantee holds across calls, since bookings made in between
// change the answer.
type Resolver struct {
	source   CalendarSource
	services ServiceRepository
	bookings BookingReader
	policy   Policy
	log      zerolog.Logger
}

func NewResolver(source CalendarSource, services ServiceRepository, bookings BookingReader, policy Policy, log zerolog.Logger) *Resolver {
	return &Resolver{source: source, services: services, bookings: bookings, policy: policy, log: log}
}

// ResolveRequest asks for the bookable slots on Date for the primary
// employee, the optional participants, and the requested services.
type ResolveRequest struct {
	Date                time.Time
	PrimaryEmployeeCode string
	ParticipantCodes    []string
	ServiceCodes        []string
}

// Resolve returns the ordered bookable slots. An empty result is a valid
// answer (nobody rostered, or no room can host the combination); errors are
// reserved for malformed input and unreachable critical collaborators.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) ([]TimeSlot, error) {
	if len(req.ServiceCodes) == 0 {
		return nil, ErrNoServices
	}
	if req.PrimaryEmployeeCode == "" {
		return nil, fmt.Errorf("primary employee code is required")
	}

	staff := append([]string{req.PrimaryEmployeeCode}, req.ParticipantCodes...)
	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	// Bookings through the following day so a shift crossing midnight still
	// sees everything it can collide with.
	dayEnd := dayStart.AddDate(0, 0, 2)

	index, defs, compat, existing, err := r.fetchInputs(ctx, staff, req.ServiceCodes, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// Every assigned person must be rostered that day.
	primaryWindows, known := index.ShiftsOn(req.PrimaryEmployeeCode, dayStart)
	if !known || len(primaryWindows) == 0 {
		return []TimeSlot{}, nil
	}
	for _, p := range req.ParticipantCodes {
		has, known := index.HasShift(p, dayStart)
		if !known || !has {
			return []TimeSlot{}, nil
		}
	}

	total, err := TotalDuration(req.ServiceCodes, defs)
	if err != nil {
		return nil, err
	}

	roomPool := compat.Intersection(req.ServiceCodes)
	if len(roomPool) == 0 {
		return []TimeSlot{}, nil
	}

	slots := []TimeSlot{}
	for _, window := range primaryWindows {
		if !r.policy.ShiftWithinBounds(window.End.Sub(window.Start)) {
			r.log.Warn().
				Str("employee_code", req.PrimaryEmployeeCode).
				Time("shift_start", window.Start).
				Time("shift_end", window.End).
				Msg("shift window outside policy bounds, skipped")
			continue
		}
		// Candidates on a fixed grid aligned to the shift start.
		for start := window.Start; !start.Add(total).After(window.End); start = start.Add(r.policy.Grid()) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			end := start.Add(total)

			if staffBusy(existing, staff, start, end) {
				continue
			}

			free := freeRooms(existing, roomPool, start, end)
			if len(free) == 0 {
				// Valid time, no room: not a bookable slot.
				continue
			}

			slots = append(slots, TimeSlot{StartTime: start, EndTime: end, AvailableRoomCodes: free})
		}
	}

	return slots, nil
}

// fetchInputs loads the calendar snapshot, service definitions, room
// compatibility, and existing bookings concurrently. All four are critical
// inputs; any failure aborts the resolution. (Holiday degradation happens
// inside the calendar source, which is the only non-critical input.)
func (r *Resolver) fetchInputs(ctx context.Context, staff, serviceCodes []string, from, to time.Time) (index *calendar.Index, defs []ServiceRequirement, compat RoomCompatibility, existing []Booking, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		index, err = r.source.BuildIndex(gctx, staff, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		defs, err = r.services.GetDefinitions(gctx, serviceCodes)
		return err
	})
	g.Go(func() error {
		var err error
		compat, err = r.services.GetRoomCompatibility(gctx, serviceCodes)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = r.bookings.ListInRange(gctx, from, to)
		return err
	})

	if werr := g.Wait(); werr != nil {
		return nil, nil, nil, nil, werr
	}
	return index, defs, compat, existing, nil
}

// TotalDuration sums duration+buffer across the requested services, failing
// on unknown codes, non-positive durations, and negative buffers. Booking
// validation uses the same computation so a created appointment's length
// always matches what the resolver offered.
func TotalDuration(serviceCodes []string, defs []ServiceRequirement) (time.Duration, error) {
	byCode := make(map[string]ServiceRequirement, len(defs))
	for _, d := range defs {
		byCode[d.ServiceCode] = d
	}

	minutes := 0
	for _, code := range serviceCodes {
		def, ok := byCode[code]
		if !ok {
			return 0, &UnknownServiceError{ServiceCode: code}
		}
		if def.DurationMinutes <= 0 {
			return 0, &DurationError{ServiceCode: code, Field: "duration", Minutes: def.DurationMinutes}
		}
		if def.BufferMinutes < 0 {
			return 0, &DurationError{ServiceCode: code, Field: "buffer", Minutes: def.BufferMinutes}
		}
		minutes += def.TotalMinutes()
	}
	return time.Duration(minutes) * time.Minute, nil
}

func staffBusy(bookings []Booking, staff []string, start, end time.Time) bool {
	for _, code := range staff {
		if EmployeeBusy(bookings, code, start, end) {
			return true
		}
	}
	return false
}

func freeRooms(bookings []Booking, pool []string, start, end time.Time) []string {
	var free []string
	for _, room := range pool {
		if !RoomBusy(bookings, room, start, end) {
			free = append(free, room)
		}
	}
	return free
}
