package calendar

import (
	"sort"
	"time"
)

// Index is an immutable per-employee, per-date availability snapshot covering
// one requested date range. Snapshots are rebuilt wholesale and swapped, never
// mutated, so concurrent readers cannot observe a partial update.
type Index struct {
	from time.Time
	to   time.Time

	// (employeeCode, date) -> merged shift windows, ascending by start
	shifts map[string][]ShiftWindow
	// employees actually loaded into this snapshot
	loaded map[string]bool

	holidays        []HolidayDate
	holidaysLoaded  bool
}

func windowKey(employeeCode string, date time.Time) string {
	return employeeCode + "|" + DateKey(date)
}

// NewIndex groups shift records by (employee, date), merging overlapping
// windows for the same employee and day into their union. employeeCodes
// lists every employee this snapshot claims knowledge of, including those
// with zero shifts in range.
func NewIndex(from, to time.Time, employeeCodes []string, shifts []ShiftRecord, holidays []HolidayDate, holidaysLoaded bool) *Index {
	idx := &Index{
		from:           from,
		to:             to,
		shifts:         make(map[string][]ShiftWindow),
		loaded:         make(map[string]bool, len(employeeCodes)),
		holidays:       holidays,
		holidaysLoaded: holidaysLoaded,
	}

	for _, code := range employeeCodes {
		idx.loaded[code] = true
	}

	for _, rec := range shifts {
		if rec.ShiftStart.Before(rec.ShiftEnd) {
			key := windowKey(rec.EmployeeCode, rec.WorkDate)
			idx.shifts[key] = append(idx.shifts[key], ShiftWindow{Start: rec.ShiftStart, End: rec.ShiftEnd})
		}
	}

	for key, windows := range idx.shifts {
		idx.shifts[key] = mergeWindows(windows)
	}

	return idx
}

// mergeWindows sorts windows by start and collapses overlapping or touching
// windows into their union.
func mergeWindows(windows []ShiftWindow) []ShiftWindow {
	if len(windows) <= 1 {
		return windows
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// ShiftsOn returns the merged shift windows for an employee on a date,
// ascending by start. The second return value reports whether the employee
// was loaded into this snapshot: false means "unknown", not "no shift".
func (idx *Index) ShiftsOn(employeeCode string, date time.Time) ([]ShiftWindow, bool) {
	if !idx.loaded[employeeCode] {
		return nil, false
	}
	return idx.shifts[windowKey(employeeCode, date)], true
}

// HasShift reports whether the employee is rostered on the date. The second
// return value carries the same known/unknown discrimination as ShiftsOn.
func (idx *Index) HasShift(employeeCode string, date time.Time) (bool, bool) {
	windows, known := idx.ShiftsOn(employeeCode, date)
	return len(windows) > 0, known
}

// HolidaysInRange returns the holidays falling in [from, to] inclusive.
func (idx *Index) HolidaysInRange(from, to time.Time) []HolidayDate {
	var out []HolidayDate
	for _, h := range idx.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out
}

// IsHoliday reports whether the date is a holiday in this snapshot.
func (idx *Index) IsHoliday(date time.Time) bool {
	key := DateKey(date)
	for _, h := range idx.holidays {
		if DateKey(h.Date) == key {
			return true
		}
	}
	return false
}

// HolidaysLoaded reports whether the holiday source was reachable when the
// snapshot was built. A degraded snapshot still answers shift queries.
func (idx *Index) HolidaysLoaded() bool { return idx.holidaysLoaded }

// Range returns the date range this snapshot covers.
func (idx *Index) Range() (time.Time, time.Time) { return idx.from, idx.to }
