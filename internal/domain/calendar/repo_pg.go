package calendar

import (
	"context"
	"time"

	"github.com/cliniq/cliniq/internal/platform/db"
)

// =========== Shift Repository ===========

type shiftRepoPG struct{ pool db.Querier }

func NewShiftRepoPG(pool db.Querier) ShiftRepository { return &shiftRepoPG{pool: pool} }

func (r *shiftRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const shiftCols = `id, employee_code, work_date, shift_start, shift_end`

func (r *shiftRepoPG) ListByEmployee(ctx context.Context, employeeCode string, from, to time.Time) ([]ShiftRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+shiftCols+` FROM shift_record
		WHERE employee_code = $1 AND work_date >= $2 AND work_date <= $3
		ORDER BY work_date, shift_start`, employeeCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ShiftRecord
	for rows.Next() {
		var s ShiftRecord
		if err := rows.Scan(&s.ID, &s.EmployeeCode, &s.WorkDate, &s.ShiftStart, &s.ShiftEnd); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Holiday Repository ===========

type holidayRepoPG struct{ pool db.Querier }

func NewHolidayRepoPG(pool db.Querier) HolidayRepository { return &holidayRepoPG{pool: pool} }

func (r *holidayRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *holidayRepoPG) ListInRange(ctx context.Context, from, to time.Time) ([]HolidayDate, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT holiday_date, name FROM holiday_date
		WHERE holiday_date >= $1 AND holiday_date <= $2
		ORDER BY holiday_date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []HolidayDate
	for rows.Next() {
		var h HolidayDate
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

// =========== Employee Repository ===========

type employeeRepoPG struct{ pool db.Querier }

func NewEmployeeRepoPG(pool db.Querier) EmployeeRepository { return &employeeRepoPG{pool: pool} }

func (r *employeeRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *employeeRepoPG) GetByCode(ctx context.Context, code string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).QueryRow(ctx, `SELECT code, name, role, active FROM employee WHERE code = $1`, code).
		Scan(&e.Code, &e.Name, &e.Role, &e.Active)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
