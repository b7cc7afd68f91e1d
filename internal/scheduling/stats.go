package scheduling

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Stats aggregates dashboard counters over all appointments regardless of status.
// Today and ThisWeek are computed on calendar dates in now's location; the week starts on Monday.
func Stats(appointments []*domain.Appointment, now time.Time) domain.AppointmentStats {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 7)

	stats := domain.AppointmentStats{Total: len(appointments)}
	patients := make(map[string]struct{}, len(appointments))

	for _, a := range appointments {
		start := a.Range.Start().In(loc)
		if !start.Before(today) && start.Before(tomorrow) {
			stats.Today++
		}
		if !start.Before(weekStart) && start.Before(weekEnd) {
			stats.ThisWeek++
		}
		patients[a.PatientEmail] = struct{}{}

		switch a.Kind {
		case domain.KindRecurring:
			stats.Recurring++
		default:
			stats.OneTime++
		}
	}
	stats.TotalPatients = len(patients)

	return stats
}
