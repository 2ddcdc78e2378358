package timeoff

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/domain/scheduling"
)

// Service answers overlap checks between a proposed leave range and the
// employee's existing commitments. It never mutates anything; approval and
// balance accounting stay with the HR collaborator.
type Service struct {
	repo     Repository
	bookings scheduling.BookingReader
	log      zerolog.Logger
}

func NewService(repo Repository, bookings scheduling.BookingReader, log zerolog.Logger) *Service {
	return &Service{repo: repo, bookings: bookings, log: log}
}

// CheckRequest is a proposed leave range, dates inclusive.
type CheckRequest struct {
	EmployeeCode string    `json:"employee_code"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// CheckResult lists what the proposed range collides with. Overlapping
// requests are hard conflicts; overlapping appointments are warnings the
// requester has to resolve, since an approved leave does not cancel them.
type CheckResult struct {
	Conflicts    []TimeOffRequest     `json:"conflicts"`
	Appointments []scheduling.Booking `json:"appointment_warnings"`
	HasConflict  bool                 `json:"has_conflict"`
}

// CheckOverlap compares the proposed range with the employee's pending and
// approved requests and with their booked appointments. Date ranges are
// inclusive on both ends: two leaves sharing a boundary day collide, unlike
// the minute-granular half-open rule appointments use among themselves.
func (s *Service) CheckOverlap(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if req.EmployeeCode == "" {
		return nil, &ValidationError{Field: "employee_code", Reason: "is required"}
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, &ValidationError{Field: "start_date and end_date", Reason: "are required"}
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, &ValidationError{Field: "end_date", Reason: "precedes start_date"}
	}

	existing, err := s.repo.ListByEmployee(ctx, req.EmployeeCode, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result := &CheckResult{}
	for _, r := range existing {
		if !r.Status.Blocks() {
			continue
		}
		if scheduling.DateRangesOverlap(req.StartDate, req.EndDate, r.StartDate, r.EndDate) {
			result.Conflicts = append(result.Conflicts, r)
		}
	}
	result.HasConflict = len(result.Conflicts) > 0

	// The leave range covers whole days; appointments on the last day
	// still count, so the window extends to the following midnight.
	from := req.StartDate
	to := req.EndDate.AddDate(0, 0, 1)
	booked, err := s.bookings.ListInRange(ctx, from, to)
	if err != nil {
		// Degraded: the request-level answer stands without the
		// appointment warnings.
		s.log.Warn().Err(err).
			Str("employee_code", req.EmployeeCode).
			Msg("appointment lookup failed during time-off check")
		return result, nil
	}
	for _, b := range booked {
		if b.EmployeeCode == req.EmployeeCode || contains(b.ParticipantCodes, req.EmployeeCode) {
			result.Appointments = append(result.Appointments, b)
		}
	}
	return result, nil
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
