package timeoff

import (
	"context"
	"time"

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

func (r *repoPG) ListByEmployee(ctx context.Context, employeeCode string, from, to time.Time) ([]TimeOffRequest, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, employee_code, start_date, end_date, status, reason
		FROM time_off_request
		WHERE employee_code = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date`, employeeCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TimeOffRequest
	for rows.Next() {
		var t TimeOffRequest
		if err := rows.Scan(&t.ID, &t.EmployeeCode, &t.StartDate, &t.EndDate, &t.Status, &t.Reason); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
