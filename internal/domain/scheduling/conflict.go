package scheduling

import "time"

// Overlaps reports whether two half-open time ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back bookings, where one ends exactly
// when the other starts, do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DateRangesOverlap reports whether two inclusive date ranges intersect.
// Time-off is date-granular, so ranges sharing a boundary day DO conflict;
// this is a real semantic difference from the half-open minute-granular rule
// and must not be unified with Overlaps.
func DateRangesOverlap(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !bFrom.After(aTo)
}

// EmployeeBusy reports whether the employee, as primary or participant, has
// a booking overlapping [start, end).
func EmployeeBusy(bookings []Booking, employeeCode string, start, end time.Time) bool {
	for _, b := range bookings {
		if !Overlaps(start, end, b.Start, b.End) {
			continue
		}
		if b.EmployeeCode == employeeCode {
			return true
		}
		for _, p := range b.ParticipantCodes {
			if p == employeeCode {
				return true
			}
		}
	}
	return false
}

// RoomBusy reports whether the room has a booking overlapping [start, end).
func RoomBusy(bookings []Booking, roomCode string, start, end time.Time) bool {
	for _, b := range bookings {
		if b.RoomCode == roomCode && Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// BookingConflicts returns the bookings colliding with [start, end) for the
// employee, any of the participants, or the room. The excluded appointment
// code (the one being moved) is skipped.
func BookingConflicts(bookings []Booking, employeeCode string, participantCodes []string, roomCode string, start, end time.Time, excludeAppointment string) []Booking {
	staff := append([]string{employeeCode}, participantCodes...)

	var out []Booking
	for _, b := range bookings {
		if b.AppointmentCode == excludeAppointment {
			continue
		}
		if !Overlaps(start, end, b.Start, b.End) {
			continue
		}
		if roomCode != "" && b.RoomCode == roomCode {
			out = append(out, b)
			continue
		}
		if bookingInvolvesAny(b, staff) {
			out = append(out, b)
		}
	}
	return out
}

func bookingInvolvesAny(b Booking, employeeCodes []string) bool {
	for _, code := range employeeCodes {
		if b.EmployeeCode == code {
			return true
		}
		for _, p := range b.ParticipantCodes {
			if p == code {
				return true
			}
		}
	}
	return false
}
