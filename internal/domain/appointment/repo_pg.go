package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

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

const apptCols = `id, code, patient_code, employee_code, room_code, service_codes, status,
	start_time, end_time, actual_start_time, actual_end_time,
	reason_code, notes, linked_treatment_plan_code, version_id, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, appt *Appointment) error {
	appt.ID = uuid.New()
	appt.VersionID = 1
	q := r.conn(ctx)

	_, err := q.Exec(ctx, `
		INSERT INTO appointment (
			id, code, patient_code, employee_code, room_code, service_codes, status,
			start_time, end_time, actual_start_time, actual_end_time,
			reason_code, notes, linked_treatment_plan_code, version_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		appt.ID, appt.Code, appt.PatientCode, appt.EmployeeCode, appt.RoomCode, appt.ServiceCodes, appt.Status,
		appt.StartTime, appt.EndTime, appt.ActualStartTime, appt.ActualEndTime,
		appt.ReasonCode, appt.Notes, appt.LinkedTreatmentPlanCode, appt.VersionID,
	)
	if err != nil {
		return mapWriteError(err)
	}

	for _, p := range appt.ParticipantCodes {
		if _, err := q.Exec(ctx, `
			INSERT INTO appointment_participant (appointment_code, employee_code)
			VALUES ($1, $2)`, appt.Code, p); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Appointment, error) {
	q := r.conn(ctx)

	var a Appointment
	err := q.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE code = $1`, code).Scan(
		&a.ID, &a.Code, &a.PatientCode, &a.EmployeeCode, &a.RoomCode, &a.ServiceCodes, &a.Status,
		&a.StartTime, &a.EndTime, &a.ActualStartTime, &a.ActualEndTime,
		&a.ReasonCode, &a.Notes, &a.LinkedTreatmentPlanCode, &a.VersionID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	participants, err := r.listParticipants(ctx, a.Code)
	if err != nil {
		return nil, err
	}
	a.ParticipantCodes = participants
	return &a, nil
}

func (r *repoPG) Update(ctx context.Context, appt *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			status=$2, start_time=$3, end_time=$4,
			actual_start_time=$5, actual_end_time=$6,
			reason_code=$7, notes=$8, room_code=$9,
			version_id=version_id+1, updated_at=NOW()
		WHERE code = $1`,
		appt.Code, appt.Status, appt.StartTime, appt.EndTime,
		appt.ActualStartTime, appt.ActualEndTime,
		appt.ReasonCode, appt.Notes, appt.RoomCode,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	appt.VersionID++
	return nil
}

func (r *repoPG) List(ctx context.Context, filter Filter, limit, offset int) ([]*Appointment, int, error) {
	where, args := buildFilter(filter)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment`+where+
			fmt.Sprintf(` ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.Code, &a.PatientCode, &a.EmployeeCode, &a.RoomCode, &a.ServiceCodes, &a.Status,
			&a.StartTime, &a.EndTime, &a.ActualStartTime, &a.ActualEndTime,
			&a.ReasonCode, &a.Notes, &a.LinkedTreatmentPlanCode, &a.VersionID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, a := range items {
		participants, err := r.listParticipants(ctx, a.Code)
		if err != nil {
			return nil, 0, err
		}
		a.ParticipantCodes = participants
	}
	return items, total, nil
}

func (r *repoPG) listParticipants(ctx context.Context, code string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT employee_code FROM appointment_participant
		WHERE appointment_code = $1 ORDER BY employee_code`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func buildFilter(f Filter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.PatientCode != "" {
		add(" patient_code = $%d", f.PatientCode)
	}
	if f.EmployeeCode != "" {
		add(" employee_code = $%d", f.EmployeeCode)
	}
	if f.RoomCode != "" {
		add(" room_code = $%d", f.RoomCode)
	}
	if f.Status != "" {
		add(" status = $%d", f.Status)
	}
	if !f.From.IsZero() {
		add(" end_time > $%d", f.From)
	}
	if !f.To.IsZero() {
		add(" start_time < $%d", f.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE" + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND" + c
	}
	return where, args
}

// mapWriteError turns the one-writer-wins constraint violations into the
// slot conflict the lifecycle surfaces to callers.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01": // unique_violation, exclusion_violation
			return ErrSlotConflict
		}
	}
	return err
}
