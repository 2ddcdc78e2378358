package calendar

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestShiftRepoPG_ListByEmployee(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewShiftRepoPG(mock)

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+shiftCols+` FROM shift_record
		WHERE employee_code = $1 AND work_date >= $2 AND work_date <= $3
		ORDER BY work_date, shift_start`)).
		WithArgs("E1", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "employee_code", "work_date", "shift_start", "shift_end"}).
			AddRow(uuid.New(), "E1", day, day.Add(8*time.Hour), day.Add(12*time.Hour)).
			AddRow(uuid.New(), "E1", day, day.Add(13*time.Hour), day.Add(17*time.Hour)))

	shifts, err := repo.ListByEmployee(context.Background(), "E1", from, to)
	if err != nil {
		t.Fatalf("ListByEmployee: %v", err)
	}
	if len(shifts) != 2 {
		t.Fatalf("expected 2 shifts, got %d", len(shifts))
	}
	if shifts[0].EmployeeCode != "E1" || !shifts[0].ShiftStart.Equal(day.Add(8*time.Hour)) {
		t.Errorf("first shift = %+v", shifts[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHolidayRepoPG_QueryFailurePropagates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewHolidayRepoPG(mock)

	boom := errors.New("connection refused")
	mock.ExpectQuery(`SELECT holiday_date, name FROM holiday_date`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(boom)

	if _, err := repo.ListInRange(context.Background(), time.Now(), time.Now()); !errors.Is(err, boom) {
		t.Errorf("expected query error, got %v", err)
	}
}
