package scheduling

import "github.com/m04kA/SMC-SchedulingService/internal/domain"

// IsAvailable returns true if candidate overlaps none of the existing ranges.
// Overlap is strict: a.start < b.end && b.start < a.end, so touching ranges are free.
func IsAvailable(candidate domain.TimeRange, existing []domain.TimeRange) bool {
	for _, r := range existing {
		if candidate.Overlaps(r) {
			return false
		}
	}
	return true
}

// Conflicts returns the existing ranges that overlap candidate, in input order
func Conflicts(candidate domain.TimeRange, existing []domain.TimeRange) []domain.TimeRange {
	var res []domain.TimeRange
	for _, r := range existing {
		if candidate.Overlaps(r) {
			res = append(res, r)
		}
	}
	return res
}

// FirstConflict checks every candidate and returns the first one that is taken
func FirstConflict(candidates []domain.TimeRange, existing []domain.TimeRange) (domain.TimeRange, bool) {
	for _, c := range candidates {
		if !IsAvailable(c, existing) {
			return c, true
		}
	}
	return domain.TimeRange{}, false
}

// BusyBookings collects ranges of bookings that still hold their time
func BusyBookings(bookings []*domain.BookingRecord) []domain.TimeRange {
	res := make([]domain.TimeRange, 0, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			res = append(res, b.Range)
		}
	}
	return res
}

// BusyAppointments collects ranges of appointments that still occupy the calendar
func BusyAppointments(appointments []*domain.Appointment) []domain.TimeRange {
	res := make([]domain.TimeRange, 0, len(appointments))
	for _, a := range appointments {
		if a.IsActive() {
			res = append(res, a.Range)
		}
	}
	return res
}
