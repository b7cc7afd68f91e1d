// Package scheduling holds the pure slot, conflict and recurrence algorithms.
// Nothing here touches the store or the clock.
package scheduling

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// GenerateSlots returns candidate slots for day offsets 1..horizonDays after referenceNow.
// Today is never offered. On each working day a cursor starts at the opening time and moves
// on a fixed hourly grid; a slot is emitted while [cursor, cursor+session) ends no later than closing.
// Days are computed in the schedule's time zone, or referenceNow's location if it has none.
func GenerateSlots(schedule domain.WorkingSchedule, horizonDays int, referenceNow time.Time) []domain.Slot {
	if horizonDays <= 0 || schedule.SessionDurationMinutes <= 0 {
		return []domain.Slot{}
	}
	if schedule.WorkingHours.Start.IsZero() || schedule.WorkingHours.End.IsZero() {
		return []domain.Slot{}
	}

	loc := schedule.Location(referenceNow.Location())
	now := referenceNow.In(loc)
	session := schedule.SessionDuration()
	step := time.Duration(domain.SlotStepMinutes) * time.Minute

	slots := make([]domain.Slot, 0)
	for offset := 1; offset <= horizonDays; offset++ {
		day := now.AddDate(0, 0, offset)
		if !schedule.IsWorkingDay(day.Weekday()) {
			continue
		}

		open := schedule.WorkingHours.Start.On(day, loc)
		closing := schedule.WorkingHours.End.On(day, loc)

		for cursor := open; cursor.Before(closing); cursor = cursor.Add(step) {
			end := cursor.Add(session)
			if end.After(closing) {
				// шаг фиксированный, дальше слоты только длиннее выходят за закрытие
				break
			}
			r, err := domain.NewTimeRange(cursor, end)
			if err != nil {
				continue
			}
			slots = append(slots, domain.Slot{Range: r, Available: true})
		}
	}

	return slots
}

// MarkAvailability flags every slot that overlaps a busy range as unavailable.
// The input slice is not modified.
func MarkAvailability(slots []domain.Slot, busy []domain.TimeRange) []domain.Slot {
	res := make([]domain.Slot, len(slots))
	for i, s := range slots {
		res[i] = domain.Slot{
			Range:     s.Range,
			Available: s.Available && IsAvailable(s.Range, busy),
		}
	}
	return res
}
