package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func TestStats(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	// среда 2024-01-03 12:00 по Мехико
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, loc)

	appt := func(start time.Time, email string, kind domain.BookingKind) *domain.Appointment {
		return &domain.Appointment{
			PatientEmail: email,
			Range:        rangeAt(t, start, time.Hour),
			Kind:         kind,
			Status:       domain.AppointmentScheduled,
		}
	}

	items := []*domain.Appointment{
		appt(time.Date(2024, 1, 3, 9, 0, 0, 0, loc), "ana@example.com", domain.KindOneTime),
		// 23:30 по Мехико это уже 4 января по UTC, но день считается в локации
		appt(time.Date(2024, 1, 3, 23, 30, 0, 0, loc), "luis@example.com", domain.KindRecurring),
		appt(time.Date(2024, 1, 1, 10, 0, 0, 0, loc), "ana@example.com", domain.KindRecurring),
		appt(time.Date(2024, 1, 7, 18, 0, 0, 0, loc), "eva@example.com", domain.KindOneTime),
		appt(time.Date(2024, 1, 8, 9, 0, 0, 0, loc), "eva@example.com", domain.KindOneTime),
		appt(time.Date(2023, 12, 31, 9, 0, 0, 0, loc), "eva@example.com", domain.KindOneTime),
	}

	stats := Stats(items, now)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 4, stats.ThisWeek)
	assert.Equal(t, 3, stats.TotalPatients)
	assert.Equal(t, 2, stats.Recurring)
	assert.Equal(t, 4, stats.OneTime)
}

func TestStats_SundayBelongsToPreviousWeek(t *testing.T) {
	now := time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC)
	items := []*domain.Appointment{
		{Range: rangeAt(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), time.Hour)},
		{Range: rangeAt(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), time.Hour)},
	}

	stats := Stats(items, now)
	assert.Equal(t, 1, stats.ThisWeek)
	assert.Equal(t, 0, stats.Today)
	assert.Equal(t, 2, stats.OneTime)
}

func TestStats_Empty(t *testing.T) {
	assert.Equal(t, domain.AppointmentStats{}, Stats(nil, time.Now()))
}
