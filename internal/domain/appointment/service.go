package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/domain/scheduling"
	"github.com/cliniq/cliniq/internal/platform/db"
)

// Service owns appointment booking and lifecycle. The in-memory calendar is
// advisory only; every write re-verifies against current bookings, and the
// storage constraint is the final arbiter between two concurrent attempts
// for the same slot.
type Service struct {
	repo     Repository
	bookings scheduling.BookingReader
	services scheduling.ServiceRepository
	syncer   Syncer
	log      zerolog.Logger

	runTx     func(ctx context.Context, fn func(ctx context.Context) error) error
	txCapable bool
}

func NewService(repo Repository, bookings scheduling.BookingReader, services scheduling.ServiceRepository, syncer Syncer, pool *pgxpool.Pool, log zerolog.Logger) *Service {
	s := &Service{
		repo:     repo,
		bookings: bookings,
		services: services,
		syncer:   syncer,
		log:      log,
	}
	if pool != nil {
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		}
		s.txCapable = true
	} else {
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

// CreateRequest carries a booking for a chosen slot and room.
type CreateRequest struct {
	PatientCode             string    `json:"patient_code"`
	EmployeeCode            string    `json:"employee_code"`
	ParticipantCodes        []string  `json:"participant_codes"`
	RoomCode                string    `json:"room_code"`
	ServiceCodes            []string  `json:"service_codes"`
	StartTime               time.Time `json:"start_time"`
	Notes                   string    `json:"notes"`
	LinkedTreatmentPlanCode string    `json:"linked_treatment_plan_code"`
}

func (r CreateRequest) validate() error {
	switch {
	case r.PatientCode == "":
		return &ValidationError{Field: "patient_code"}
	case r.EmployeeCode == "":
		return &ValidationError{Field: "employee_code"}
	case r.RoomCode == "":
		return &ValidationError{Field: "room_code"}
	case len(r.ServiceCodes) == 0:
		return scheduling.ErrNoServices
	case r.StartTime.IsZero():
		return &ValidationError{Field: "start_time"}
	}
	return nil
}

// Create books an appointment. The end time is the start plus the summed
// duration and buffer of every requested service. Bookings are re-checked
// against current data immediately before the insert; a collision here or
// at the storage constraint comes back as a slot conflict.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	defs, err := s.services.GetDefinitions(ctx, req.ServiceCodes)
	if err != nil {
		return nil, fmt.Errorf("load service definitions: %w", err)
	}
	total, err := scheduling.TotalDuration(req.ServiceCodes, defs)
	if err != nil {
		return nil, err
	}
	end := req.StartTime.Add(total)

	if err := s.checkWindow(ctx, req.EmployeeCode, req.ParticipantCodes, req.RoomCode, req.StartTime, end, ""); err != nil {
		return nil, err
	}

	appt := &Appointment{
		Code:             newCode(),
		PatientCode:      req.PatientCode,
		EmployeeCode:     req.EmployeeCode,
		ParticipantCodes: req.ParticipantCodes,
		RoomCode:         req.RoomCode,
		ServiceCodes:     req.ServiceCodes,
		Status:           StatusScheduled,
		StartTime:        req.StartTime,
		EndTime:          end,
	}
	if req.Notes != "" {
		appt.Notes = &req.Notes
	}
	if req.LinkedTreatmentPlanCode != "" {
		appt.LinkedTreatmentPlanCode = &req.LinkedTreatmentPlanCode
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Get returns one appointment by code.
func (s *Service) Get(ctx context.Context, code string) (*Appointment, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns appointments matching the filter.
func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// UpdateStatus applies one lifecycle transition and persists the result.
// When the transition emits a plan sync command, the command runs after the
// appointment's own change is committed; a sync failure comes back as
// ErrPartialSideEffect alongside the (valid, persisted) appointment.
func (s *Service) UpdateStatus(ctx context.Context, code string, target Status, reasonCode, notes string) (*Appointment, error) {
	appt, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	updated, cmd, err := Transition(*appt, target, reasonCode, notes, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if syncErr := s.dispatchSync(ctx, cmd); syncErr != nil {
		return &updated, syncErr
	}
	return &updated, nil
}

// dispatchSync hands a plan sync command to the collaborator. A nil command
// is a no-op. Failure is logged and wrapped; the caller's committed state
// stands regardless.
func (s *Service) dispatchSync(ctx context.Context, cmd *PlanSyncCommand) error {
	if cmd == nil {
		return nil
	}
	if s.syncer == nil {
		s.log.Warn().
			Str("appointment_code", cmd.AppointmentCode).
			Str("plan_code", cmd.PlanCode).
			Msg("no plan syncer configured, sync command dropped")
		return nil
	}
	if err := s.syncer.Apply(ctx, *cmd); err != nil {
		s.log.Error().Err(err).
			Str("appointment_code", cmd.AppointmentCode).
			Str("plan_code", cmd.PlanCode).
			Str("action", string(cmd.Action)).
			Msg("treatment plan sync failed after committed transition")
		return &PartialSideEffectError{Command: *cmd, Err: err}
	}
	return nil
}

// checkWindow re-runs conflict detection against current bookings for the
// employee, participants, and room over [start, end). excludeCode skips the
// appointment being moved.
func (s *Service) checkWindow(ctx context.Context, employeeCode string, participantCodes []string, roomCode string, start, end time.Time, excludeCode string) error {
	existing, err := s.bookings.ListInRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("load existing bookings: %w", err)
	}

	conflicts := scheduling.BookingConflicts(existing, employeeCode, participantCodes, roomCode, start, end, excludeCode)
	if len(conflicts) == 0 {
		return nil
	}

	codes := make([]string, len(conflicts))
	for i, c := range conflicts {
		codes[i] = c.AppointmentCode
	}
	return &ConflictError{Start: start, End: end, ConflictingCodes: codes}
}

func newCode() string {
	return "APT-" + strings.ToUpper(uuid.New().String()[:8])
}
