package treatmentplan

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cliniq/cliniq/internal/platform/db"
)

type repoPG struct{ pool db.Querier }

func NewRepoPG(pool db.Querier) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const itemCols = `id, plan_code, patient_code, service_code, status, appointment_code, sort_order, updated_at`

func (r *repoPG) GetByPlanAndAppointment(ctx context.Context, planCode, appointmentCode string) (*PlanItem, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `
		SELECT `+itemCols+` FROM treatment_plan_item
		WHERE plan_code = $1 AND appointment_code = $2`, planCode, appointmentCode))
}

func (r *repoPG) FindByAppointment(ctx context.Context, appointmentCode string) (*PlanItem, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `
		SELECT `+itemCols+` FROM treatment_plan_item
		WHERE appointment_code = $1
		ORDER BY updated_at DESC LIMIT 1`, appointmentCode))
}

func (r *repoPG) scanItem(row pgx.Row) (*PlanItem, error) {
	var item PlanItem
	err := row.Scan(&item.ID, &item.PlanCode, &item.PatientCode, &item.ServiceCode,
		&item.Status, &item.AppointmentCode, &item.SortOrder, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, item *PlanItem) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan_item SET status = $2, updated_at = NOW()
		WHERE id = $1`, item.ID, item.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repoPG) RelinkPlan(ctx context.Context, item *PlanItem, planCode string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan_item SET plan_code = $2, updated_at = NOW()
		WHERE id = $1`, item.ID, planCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	item.PlanCode = planCode
	return nil
}
