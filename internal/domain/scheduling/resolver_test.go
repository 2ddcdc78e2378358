package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/domain/calendar"
)

// -- Mock collaborators --

type mockCalendarSource struct {
	shifts   map[string][]calendar.ShiftRecord
	holidays []calendar.HolidayDate
	err      error
}

func (m *mockCalendarSource) BuildIndex(_ context.Context, employeeCodes []string, from, to time.Time) (*calendar.Index, error) {
	if m.err != nil {
		return nil, m.err
	}
	var records []calendar.ShiftRecord
	for _, code := range employeeCodes {
		records = append(records, m.shifts[code]...)
	}
	return calendar.NewIndex(from, to, employeeCodes, records, m.holidays, true), nil
}

type mockServiceRepo struct {
	defs   map[string]ServiceRequirement
	compat RoomCompatibility
	err    error
}

func (m *mockServiceRepo) GetDefinitions(_ context.Context, serviceCodes []string) ([]ServiceRequirement, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []ServiceRequirement
	for _, code := range serviceCodes {
		if d, ok := m.defs[code]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockServiceRepo) GetRoomCompatibility(_ context.Context, _ []string) (RoomCompatibility, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.compat, nil
}

type mockBookingReader struct {
	bookings []Booking
	err      error
}

func (m *mockBookingReader) ListInRange(_ context.Context, from, to time.Time) ([]Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bookings, nil
}

func dayShift(emp string, startH, startM, endH, endM int) calendar.ShiftRecord {
	d := date(2025, 6, 10)
	return calendar.ShiftRecord{
		EmployeeCode: emp,
		WorkDate:     d,
		ShiftStart:   at(startH, startM),
		ShiftEnd:     at(endH, endM),
	}
}

func svc(code string, duration, buffer int) ServiceRequirement {
	return ServiceRequirement{ServiceCode: code, DurationMinutes: duration, BufferMinutes: buffer}
}

// testPolicy keeps the default grid but widens the shift-length bounds so
// fixtures can use short shifts without tripping the roster sanity check.
// Bounds enforcement itself is covered by TestResolve_ShiftOutsidePolicyBounds.
func testPolicy() Policy {
	return Policy{GridMinutes: 15, MinShiftHours: 1, MaxShiftHours: 12}
}

func newTestResolver(source *mockCalendarSource, services *mockServiceRepo, bookings *mockBookingReader) *Resolver {
	return NewResolver(source, services, bookings, testPolicy(), zerolog.Nop())
}

func resolveOn(t *testing.T, r *Resolver, req ResolveRequest) []TimeSlot {
	t.Helper()
	slots, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return slots
}

// ---------------------------------------------------------------------------
// Grid generation
// ---------------------------------------------------------------------------

func TestResolve_GridWithinShift(t *testing.T) {
	// One 08:00-12:00 shift, services totaling 50 minutes (30 duration + 20
	// buffer). On a 15-minute grid aligned to the shift start the first
	// candidate is 08:00 and the last is 11:00 (11:00+50m = 11:50 <= 12:00).
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 20)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})

	if len(slots) != 13 {
		t.Fatalf("expected 13 slots (08:00..11:00 every 15m), got %d", len(slots))
	}
	if !slots[0].StartTime.Equal(at(8, 0)) {
		t.Errorf("first slot = %v, want 08:00", slots[0].StartTime)
	}
	last := slots[len(slots)-1]
	if !last.StartTime.Equal(at(11, 0)) {
		t.Errorf("last slot = %v, want 11:00", last.StartTime)
	}
	if !last.EndTime.Equal(at(11, 50)) {
		t.Errorf("last slot end = %v, want 11:50", last.EndTime)
	}

	// Ascending, strictly.
	for i := 1; i < len(slots); i++ {
		if !slots[i].StartTime.After(slots[i-1].StartTime) {
			t.Fatalf("slots not strictly ascending at %d", i)
		}
	}
}

func TestResolve_LongerServiceShiftsLastCandidate(t *testing.T) {
	// 61 minutes total: the last grid start satisfying start+61m <= 12:00 is
	// 10:45 (11:00+61m = 12:01 overruns the shift).
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 61, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})

	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	last := slots[len(slots)-1]
	if !last.StartTime.Equal(at(10, 45)) {
		t.Errorf("last slot = %v, want 10:45", last.StartTime)
	}
}

func TestResolve_MultiServiceStacksDurations(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 10, 0)},
	}}
	services := &mockServiceRepo{
		defs: map[string]ServiceRequirement{
			"S1": svc("S1", 30, 15),
			"S2": svc("S2", 45, 0),
		},
		compat: RoomCompatibility{"S1": {"R1", "R2"}, "S2": {"R1", "R2"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1", "S2"},
	})

	// Total 90 minutes in a 2h shift: 08:00, 08:15, 08:30 only.
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if !slots[0].EndTime.Equal(at(9, 30)) {
		t.Errorf("slot end = %v, want 09:30", slots[0].EndTime)
	}
}

// ---------------------------------------------------------------------------
// Roster gating
// ---------------------------------------------------------------------------

func TestResolve_NoShiftNoSlots(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})
	if len(slots) != 0 {
		t.Errorf("expected no slots for unrostered employee, got %d", len(slots))
	}
}

func TestResolve_ParticipantWithoutShiftBlocksAll(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
		// E2 not rostered
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ParticipantCodes:    []string{"E2"},
		ServiceCodes:        []string{"S1"},
	})
	if len(slots) != 0 {
		t.Errorf("expected no slots when a participant is unrostered, got %d", len(slots))
	}
}

// ---------------------------------------------------------------------------
// Conflict and room filtering
// ---------------------------------------------------------------------------

func TestResolve_ExistingBookingRemovesCandidates(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 10, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 60, 0)},
		compat: RoomCompatibility{"S1": {"R1", "R2"}},
	}
	bookings := &mockBookingReader{bookings: []Booking{
		{AppointmentCode: "A1", EmployeeCode: "E1", RoomCode: "R1", Start: at(8, 0), End: at(9, 0)},
	}}
	r := newTestResolver(source, services, bookings)

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})

	// Only 09:00 remains: earlier grid points overlap the booking.
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d: %v", len(slots), slots)
	}
	if !slots[0].StartTime.Equal(at(9, 0)) {
		t.Errorf("slot = %v, want 09:00", slots[0].StartTime)
	}
}

func TestResolve_RoomIntersectionMustBeNonEmpty(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	services := &mockServiceRepo{
		defs: map[string]ServiceRequirement{
			"S1": svc("S1", 30, 0),
			"S2": svc("S2", 30, 0),
		},
		// No room hosts both services.
		compat: RoomCompatibility{"S1": {"R1"}, "S2": {"R2"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1", "S2"},
	})
	if len(slots) != 0 {
		t.Errorf("expected no slots with empty room intersection, got %d", len(slots))
	}
}

func TestResolve_BusyRoomDroppedFromSlot(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 9, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 60, 0)},
		compat: RoomCompatibility{"S1": {"R1", "R2"}},
	}
	// R1 held by another doctor's appointment for the whole hour.
	bookings := &mockBookingReader{bookings: []Booking{
		{AppointmentCode: "A1", EmployeeCode: "E9", RoomCode: "R1", Start: at(8, 0), End: at(9, 0)},
	}}
	r := newTestResolver(source, services, bookings)

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if len(slots[0].AvailableRoomCodes) != 1 || slots[0].AvailableRoomCodes[0] != "R2" {
		t.Errorf("rooms = %v, want [R2]", slots[0].AvailableRoomCodes)
	}
}

func TestResolve_AllRoomsBusyWholeDayDropsEverySlot(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 9, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 60, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	bookings := &mockBookingReader{bookings: []Booking{
		{AppointmentCode: "A1", EmployeeCode: "E9", RoomCode: "R1", Start: at(8, 0), End: at(9, 0)},
	}}
	r := newTestResolver(source, services, bookings)

	slots := resolveOn(t, r, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})
	if len(slots) != 0 {
		t.Errorf("valid time with no free room must not be a slot, got %d", len(slots))
	}
}

// ---------------------------------------------------------------------------
// Validation and failure
// ---------------------------------------------------------------------------

func TestResolve_RequiresServices(t *testing.T) {
	r := newTestResolver(&mockCalendarSource{}, &mockServiceRepo{}, &mockBookingReader{})
	_, err := r.Resolve(context.Background(), ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
	})
	if !errors.Is(err, ErrNoServices) {
		t.Errorf("expected ErrNoServices, got %v", err)
	}
}

func TestResolve_NonPositiveDurationFailsWholeComputation(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 0, 10)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	_, err := r.Resolve(context.Background(), ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})
	var durErr *DurationError
	if !errors.As(err, &durErr) {
		t.Fatalf("expected DurationError, got %v", err)
	}
	if durErr.ServiceCode != "S1" {
		t.Errorf("service code = %s, want S1", durErr.ServiceCode)
	}
}

func TestResolve_NegativeBufferFailsWholeComputation(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	// A negative buffer would silently shorten every slot.
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, -10)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	_, err := r.Resolve(context.Background(), ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})
	var durErr *DurationError
	if !errors.As(err, &durErr) {
		t.Fatalf("expected DurationError, got %v", err)
	}
	if durErr.Field != "buffer" || durErr.Minutes != -10 {
		t.Errorf("detail = %+v", durErr)
	}
}

func TestResolve_UnknownServiceFails(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{},
		compat: RoomCompatibility{"S9": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	_, err := r.Resolve(context.Background(), ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S9"},
	})
	var svcErr *UnknownServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected UnknownServiceError, got %v", err)
	}
}

func TestResolve_ShiftSourceDownAborts(t *testing.T) {
	source := &mockCalendarSource{err: &calendar.UnavailableError{Source: "shifts", Err: errors.New("down")}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	_, err := r.Resolve(context.Background(), ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})
	if !errors.Is(err, calendar.ErrUnavailable) {
		t.Errorf("expected calendar.ErrUnavailable, got %v", err)
	}
}

func TestResolve_CancelledContextAborts(t *testing.T) {
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {dayShift("E1", 8, 0, 12, 0)},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, ResolveRequest{
		Date:                date(2025, 6, 10),
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

// ---------------------------------------------------------------------------
// Midnight-spanning shifts
// ---------------------------------------------------------------------------

func TestResolve_MidnightShiftGeneratesContiguousSlots(t *testing.T) {
	d := date(2025, 6, 10)
	source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
		"E1": {{
			EmployeeCode: "E1",
			WorkDate:     d,
			ShiftStart:   at(23, 0),
			ShiftEnd:     time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC),
		}},
	}}
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}
	r := newTestResolver(source, services, &mockBookingReader{})

	slots := resolveOn(t, r, ResolveRequest{
		Date:                d,
		PrimaryEmployeeCode: "E1",
		ServiceCodes:        []string{"S1"},
	})

	// 23:00 through 00:30 next day, 15-minute grid: 7 candidates.
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots across midnight, got %d", len(slots))
	}
	last := slots[len(slots)-1]
	if last.StartTime.Day() != 11 {
		t.Errorf("last slot should start past midnight, got %v", last.StartTime)
	}
}

// ---------------------------------------------------------------------------
// Policy shift bounds
// ---------------------------------------------------------------------------

func TestResolve_ShiftOutsidePolicyBounds(t *testing.T) {
	services := &mockServiceRepo{
		defs:   map[string]ServiceRequirement{"S1": svc("S1", 30, 0)},
		compat: RoomCompatibility{"S1": {"R1"}},
	}

	cases := []struct {
		name         string
		startH, endH int
		want         int
	}{
		// Defaults bound shifts to 3..8 hours. 30-minute service on a
		// 15-minute grid: a 4h shift yields starts 08:00 through 11:30.
		{"two hours is below the minimum", 8, 10, 0},
		{"four hours is within bounds", 8, 12, 15},
		{"twelve hours is above the maximum", 8, 20, 0},
	}
	for _, tc := range cases {
		source := &mockCalendarSource{shifts: map[string][]calendar.ShiftRecord{
			"E1": {dayShift("E1", tc.startH, 0, tc.endH, 0)},
		}}
		r := NewResolver(source, services, &mockBookingReader{}, DefaultPolicy(), zerolog.Nop())

		slots := resolveOn(t, r, ResolveRequest{
			Date:                date(2025, 6, 10),
			PrimaryEmployeeCode: "E1",
			ServiceCodes:        []string{"S1"},
		})
		if len(slots) != tc.want {
			t.Errorf("%s: slots = %d, want %d", tc.name, len(slots), tc.want)
		}
	}
}

func TestRoomCompatibility_Intersection(t *testing.T) {
	rc := RoomCompatibility{
		"S1": {"R1", "R2", "R3"},
		"S2": {"R2", "R3"},
		"S3": {"R3", "R4"},
	}

	got := rc.Intersection([]string{"S1", "S2", "S3"})
	if len(got) != 1 || got[0] != "R3" {
		t.Errorf("intersection = %v, want [R3]", got)
	}

	got = rc.Intersection([]string{"S1", "S2"})
	if len(got) != 2 || got[0] != "R2" || got[1] != "R3" {
		t.Errorf("intersection = %v, want [R2 R3]", got)
	}

	if got := rc.Intersection([]string{"S1", "SX"}); got != nil {
		t.Errorf("intersection with unknown service = %v, want empty", got)
	}
}
