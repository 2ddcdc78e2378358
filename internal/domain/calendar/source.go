package calendar

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source builds Index snapshots from the upstream shift and holiday
// repositories. An LRU cache keyed by (employee, month) fronts the shift
// repository; the cache is advisory only and the persistence layer stays the
// authority on actual availability at commit time.
type Source struct {
	shifts   ShiftRepository
	holidays HolidayRepository
	cache    *lru.Cache[string, []ShiftRecord]
	log      zerolog.Logger
}

func NewSource(shifts ShiftRepository, holidays HolidayRepository, cacheSize int, log zerolog.Logger) (*Source, error) {
	cache, err := lru.New[string, []ShiftRecord](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Source{shifts: shifts, holidays: holidays, cache: cache, log: log}, nil
}

func cacheKey(employeeCode, month string) string {
	return employeeCode + "|" + month
}

// BuildIndex loads shift data for every listed employee over [from, to] and
// returns a fresh snapshot. Per-employee loads are independent and fetched
// concurrently. A failed shift fetch aborts with an UnavailableError because
// shift data is a critical input; a failed holiday fetch only degrades the
// snapshot (HolidaysLoaded reports false).
func (s *Source) BuildIndex(ctx context.Context, employeeCodes []string, from, to time.Time) (*Index, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	perEmployee := make([][]ShiftRecord, len(employeeCodes))
	for i, code := range employeeCodes {
		i, code := i, code
		g.Go(func() error {
			recs, err := s.shiftsFor(gctx, code, from, to)
			if err != nil {
				return &UnavailableError{Source: "shifts", Err: err}
			}
			perEmployee[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []ShiftRecord
	for _, recs := range perEmployee {
		records = append(records, recs...)
	}

	holidays, err := s.holidays.ListInRange(ctx, from, to)
	holidaysLoaded := err == nil
	if err != nil {
		s.log.Warn().Err(err).Msg("holiday source unavailable, building degraded calendar index")
		holidays = nil
	}

	return NewIndex(from, to, employeeCodes, records, holidays, holidaysLoaded), nil
}

// shiftsFor loads an employee's shifts month by month through the cache.
func (s *Source) shiftsFor(ctx context.Context, employeeCode string, from, to time.Time) ([]ShiftRecord, error) {
	var out []ShiftRecord
	for month := startOfMonth(from); !month.After(to); month = month.AddDate(0, 1, 0) {
		key := cacheKey(employeeCode, MonthKey(month))
		recs, ok := s.cache.Get(key)
		if !ok {
			var err error
			recs, err = s.shifts.ListByEmployee(ctx, employeeCode, month, endOfMonth(month))
			if err != nil {
				return nil, err
			}
			s.cache.Add(key, recs)
		}
		for _, r := range recs {
			if !r.WorkDate.Before(truncateDate(from)) && !r.WorkDate.After(to) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// Invalidate evicts an employee's cached month after upstream shift changes.
func (s *Source) Invalidate(employeeCode string, month time.Time) {
	s.cache.Remove(cacheKey(employeeCode, MonthKey(month)))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
