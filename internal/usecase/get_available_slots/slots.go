package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
)

// busyRanges интервалы, которые уже заняты заявками ссылки и встречами практикующего
func busyRanges(bookings []*domain.BookingRecord, appointments []*domain.Appointment) []domain.TimeRange {
	busy := scheduling.BusyBookings(bookings)
	return append(busy, scheduling.BusyAppointments(appointments)...)
}

// groupByDate группирует слоты по дате начала, порядок сохраняется
func groupByDate(slots []domain.Slot) []Day {
	days := make([]Day, 0)

	for _, s := range slots {
		date := s.Range.Start().Format(domain.DateFormat)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, Day{Date: date, Slots: make([]Slot, 0)})
		}
		last := &days[len(days)-1]
		last.Slots = append(last.Slots, Slot{
			StartTime: s.Range.Start(),
			EndTime:   s.Range.End(),
			Available: s.Available,
		})
	}

	return days
}

// forcedKind ?type=recurring фиксирует тип записи, остальные значения игнорируются
func forcedKind(value string) *domain.BookingKind {
	if domain.BookingKind(value) != domain.KindRecurring {
		return nil
	}
	kind := domain.KindRecurring
	return &kind
}
