package scheduling

import (
	"context"
	"time"

	"github.com/cliniq/cliniq/internal/platform/db"
)

// =========== Service Repository ===========

type serviceRepoPG struct{ pool db.Querier }

func NewServiceRepoPG(pool db.Querier) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *serviceRepoPG) GetDefinitions(ctx context.Context, serviceCodes []string) ([]ServiceRequirement, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT service_code, name, duration_minutes, buffer_minutes, required_specialization_id
		FROM service_requirement
		WHERE service_code = ANY($1)`, serviceCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ServiceRequirement
	for rows.Next() {
		var s ServiceRequirement
		if err := rows.Scan(&s.ServiceCode, &s.Name, &s.DurationMinutes, &s.BufferMinutes, &s.RequiredSpecializationID); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *serviceRepoPG) GetRoomCompatibility(ctx context.Context, serviceCodes []string) (RoomCompatibility, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT service_code, room_code
		FROM room_compatibility
		WHERE service_code = ANY($1)
		ORDER BY service_code, room_code`, serviceCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	compat := make(RoomCompatibility)
	for rows.Next() {
		var svc, room string
		if err := rows.Scan(&svc, &room); err != nil {
			return nil, err
		}
		compat[svc] = append(compat[svc], room)
	}
	return compat, rows.Err()
}

// =========== Booking Reader ===========

// busyStatuses are the appointment statuses that hold a reservation.
// Completed, cancelled, and no-show appointments free their window.
var busyStatuses = []string{"SCHEDULED", "CHECKED_IN", "IN_PROGRESS"}

type bookingReaderPG struct{ pool db.Querier }

func NewBookingReaderPG(pool db.Querier) BookingReader { return &bookingReaderPG{pool: pool} }

func (r *bookingReaderPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *bookingReaderPG) ListInRange(ctx context.Context, from, to time.Time) ([]Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.code, a.employee_code, a.room_code, a.start_time, a.end_time,
			COALESCE(array_agg(p.employee_code) FILTER (WHERE p.employee_code IS NOT NULL), '{}')
		FROM appointment a
		LEFT JOIN appointment_participant p ON p.appointment_code = a.code
		WHERE a.status = ANY($1) AND a.start_time < $3 AND a.end_time > $2
		GROUP BY a.code, a.employee_code, a.room_code, a.start_time, a.end_time
		ORDER BY a.start_time`, busyStatuses, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.AppointmentCode, &b.EmployeeCode, &b.RoomCode, &b.Start, &b.End, &b.ParticipantCodes); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
