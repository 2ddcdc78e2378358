package treatmentplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/domain/appointment"
)

// Service applies the sync commands the appointment lifecycle emits for
// linked treatment-plan items. It satisfies appointment.Syncer.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Apply advances or cancels the plan item linked to an appointment. The
// indexed back-reference on the command is the normal resolution path; a
// miss falls through to the repair scan, which also fixes the stale link.
func (s *Service) Apply(ctx context.Context, cmd appointment.PlanSyncCommand) error {
	item, err := s.repo.GetByPlanAndAppointment(ctx, cmd.PlanCode, cmd.AppointmentCode)
	if errors.Is(err, ErrItemNotFound) {
		item, err = s.repairLinkByScan(ctx, cmd)
	}
	if err != nil {
		return fmt.Errorf("resolve plan item for %s: %w", cmd.AppointmentCode, err)
	}

	var next ItemStatus
	switch cmd.Action {
	case appointment.SyncAdvance:
		next = item.Status.Advanced()
	case appointment.SyncCancel:
		next = ItemCancelled
	default:
		return fmt.Errorf("unknown sync action %q", cmd.Action)
	}

	if next == item.Status {
		// Replayed or out-of-order command; the item is already where
		// the command would put it.
		s.log.Debug().
			Str("plan_code", cmd.PlanCode).
			Str("appointment_code", cmd.AppointmentCode).
			Str("status", string(item.Status)).
			Msg("plan sync is a no-op")
		return nil
	}

	item.Status = next
	if err := s.repo.UpdateStatus(ctx, item); err != nil {
		return fmt.Errorf("update plan item %s: %w", item.ID, err)
	}
	return nil
}

// repairLinkByScan is the degraded path for a stale or missing plan link:
// scan for any item referencing the appointment, then point it back at the
// commanded plan so the next sync takes the indexed path.
func (s *Service) repairLinkByScan(ctx context.Context, cmd appointment.PlanSyncCommand) (*PlanItem, error) {
	s.log.Warn().
		Str("plan_code", cmd.PlanCode).
		Str("appointment_code", cmd.AppointmentCode).
		Msg("plan item link stale, falling back to appointment scan")

	item, err := s.repo.FindByAppointment(ctx, cmd.AppointmentCode)
	if err != nil {
		return nil, err
	}

	if item.PlanCode != cmd.PlanCode {
		if err := s.repo.RelinkPlan(ctx, item, cmd.PlanCode); err != nil {
			return nil, fmt.Errorf("repair plan link: %w", err)
		}
	}
	return item, nil
}
