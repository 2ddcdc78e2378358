package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// -- Mock repositories --

type mockShiftRepo struct {
	shifts map[string][]ShiftRecord // employeeCode -> records
	calls  int
	err    error
}

func (m *mockShiftRepo) ListByEmployee(_ context.Context, employeeCode string, from, to time.Time) ([]ShiftRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []ShiftRecord
	for _, r := range m.shifts[employeeCode] {
		if !r.WorkDate.Before(from) && !r.WorkDate.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockHolidayRepo struct {
	holidays []HolidayDate
	err      error
}

func (m *mockHolidayRepo) ListInRange(_ context.Context, from, to time.Time) ([]HolidayDate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.holidays, nil
}

func newTestSource(t *testing.T, shifts *mockShiftRepo, holidays *mockHolidayRepo) *Source {
	t.Helper()
	src, err := NewSource(shifts, holidays, 16, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

func TestSource_BuildIndex(t *testing.T) {
	d := day(2025, 6, 10)
	shifts := &mockShiftRepo{shifts: map[string][]ShiftRecord{
		"E1": {shift("E1", d, 8, 0, 12, 0)},
	}}
	src := newTestSource(t, shifts, &mockHolidayRepo{})

	idx, err := src.BuildIndex(context.Background(), []string{"E1"}, d, d)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if has, known := idx.HasShift("E1", d); !has || !known {
		t.Error("expected E1 rostered on 2025-06-10")
	}
	if !idx.HolidaysLoaded() {
		t.Error("expected holidays loaded")
	}
}

func TestSource_CachesMonthBuckets(t *testing.T) {
	d := day(2025, 6, 10)
	shifts := &mockShiftRepo{shifts: map[string][]ShiftRecord{
		"E1": {shift("E1", d, 8, 0, 12, 0)},
	}}
	src := newTestSource(t, shifts, &mockHolidayRepo{})

	ctx := context.Background()
	if _, err := src.BuildIndex(ctx, []string{"E1"}, d, d); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if _, err := src.BuildIndex(ctx, []string{"E1"}, d, d); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if shifts.calls != 1 {
		t.Errorf("expected 1 repo call with warm cache, got %d", shifts.calls)
	}

	src.Invalidate("E1", d)
	if _, err := src.BuildIndex(ctx, []string{"E1"}, d, d); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if shifts.calls != 2 {
		t.Errorf("expected repo re-fetch after Invalidate, got %d calls", shifts.calls)
	}
}

func TestSource_ShiftFailureIsUnavailable(t *testing.T) {
	shifts := &mockShiftRepo{err: errors.New("connection refused")}
	src := newTestSource(t, shifts, &mockHolidayRepo{})

	_, err := src.BuildIndex(context.Background(), []string{"E1"}, day(2025, 6, 10), day(2025, 6, 10))
	if err == nil {
		t.Fatal("expected error when shift source is down")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestSource_HolidayFailureDegrades(t *testing.T) {
	d := day(2025, 6, 10)
	shifts := &mockShiftRepo{shifts: map[string][]ShiftRecord{
		"E1": {shift("E1", d, 8, 0, 12, 0)},
	}}
	src := newTestSource(t, shifts, &mockHolidayRepo{err: errors.New("timeout")})

	idx, err := src.BuildIndex(context.Background(), []string{"E1"}, d, d)
	if err != nil {
		t.Fatalf("holiday failure must not abort the build: %v", err)
	}
	if idx.HolidaysLoaded() {
		t.Error("expected degraded holidays")
	}
}

func TestSource_SpansMonths(t *testing.T) {
	mayShift := shift("E1", day(2025, 5, 30), 8, 0, 12, 0)
	junShift := shift("E1", day(2025, 6, 2), 8, 0, 12, 0)
	shifts := &mockShiftRepo{shifts: map[string][]ShiftRecord{
		"E1": {mayShift, junShift},
	}}
	src := newTestSource(t, shifts, &mockHolidayRepo{})

	idx, err := src.BuildIndex(context.Background(), []string{"E1"}, day(2025, 5, 28), day(2025, 6, 5))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if has, _ := idx.HasShift("E1", day(2025, 5, 30)); !has {
		t.Error("expected May shift in index")
	}
	if has, _ := idx.HasShift("E1", day(2025, 6, 2)); !has {
		t.Error("expected June shift in index")
	}
	if shifts.calls != 2 {
		t.Errorf("expected one fetch per month, got %d", shifts.calls)
	}
}
