package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

const link = "abcdef123456"

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type slotsMetrics struct{ observed []int }

func (m *slotsMetrics) ObserveSlots(n int) { m.observed = append(m.observed, n) }

type fixture struct {
	uc           *UseCase
	metrics      *slotsMetrics
	bookings     *booking.Repository
	appointments *appointment.Repository
	loc          *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	s := memory.NewStore()
	therapists := therapist.NewRepository(s)
	require.NoError(t, therapists.Put(ctx, &domain.TherapistProfile{
		ID:          "user-1",
		UserID:      "user-1",
		Name:        "Dra. Sofía Ruiz",
		Email:       "sofia@example.com",
		Schedule:    domain.DefaultSchedule(),
		BookingLink: link,
	}))

	f := &fixture{
		metrics:      &slotsMetrics{},
		bookings:     booking.NewRepository(s),
		appointments: appointment.NewRepository(s),
		loc:          loc,
	}
	// среда, 3 января 2024
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, loc)
	f.uc = NewUseCase(therapists, f.bookings, f.appointments, f.metrics, 14, logger.Nop()).
		WithTimeProvider(fixedTime{t: now})
	return f
}

func hour(t *testing.T, start time.Time) domain.TimeRange {
	t.Helper()
	r, err := domain.NewTimeRangeFromDuration(start, time.Hour)
	require.NoError(t, err)
	return r
}

func findSlot(t *testing.T, resp *Response, date string, start time.Time) Slot {
	t.Helper()
	for _, d := range resp.Days {
		if d.Date != date {
			continue
		}
		for _, s := range d.Slots {
			if s.StartTime.Equal(start) {
				return s
			}
		}
	}
	t.Fatalf("slot %s on %s not found", start, date)
	return Slot{}
}

func TestExecute_MarksBusySlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pendingStart := time.Date(2024, 1, 8, 10, 0, 0, 0, f.loc)
	_, err := f.bookings.Create(ctx, &domain.BookingRecord{
		BookingLink: link, PatientName: "Ana", PatientEmail: "ana@example.com",
		Range: hour(t, pendingStart), Kind: domain.KindOneTime, Status: domain.BookingPending,
	})
	require.NoError(t, err)

	rejectedStart := time.Date(2024, 1, 8, 11, 0, 0, 0, f.loc)
	_, err = f.bookings.Create(ctx, &domain.BookingRecord{
		BookingLink: link, PatientName: "Luis", PatientEmail: "luis@example.com",
		Range: hour(t, rejectedStart), Kind: domain.KindOneTime, Status: domain.BookingRejected,
	})
	require.NoError(t, err)

	apptStart := time.Date(2024, 1, 9, 9, 30, 0, 0, f.loc)
	_, err = f.appointments.Create(ctx, &domain.Appointment{
		TherapistID: "user-1", PatientName: "María", PatientEmail: "maria@example.com",
		Range: hour(t, apptStart), Kind: domain.KindOneTime, Status: domain.AppointmentScheduled,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(ctx, &Request{BookingLink: link})
	require.NoError(t, err)

	// 10 рабочих дней по 8 слотов
	require.Len(t, resp.Days, 10)
	assert.Equal(t, "2024-01-04", resp.Days[0].Date)
	assert.Equal(t, "2024-01-17", resp.Days[9].Date)
	total := 0
	for _, d := range resp.Days {
		total += len(d.Slots)
	}
	assert.Equal(t, 80, total)

	assert.False(t, findSlot(t, resp, "2024-01-08", pendingStart).Available)
	assert.True(t, findSlot(t, resp, "2024-01-08", rejectedStart).Available)
	// встреча 09:30-10:30 занимает слоты 09:00 и 10:00
	assert.False(t, findSlot(t, resp, "2024-01-09", time.Date(2024, 1, 9, 9, 0, 0, 0, f.loc)).Available)
	assert.False(t, findSlot(t, resp, "2024-01-09", time.Date(2024, 1, 9, 10, 0, 0, 0, f.loc)).Available)
	assert.True(t, findSlot(t, resp, "2024-01-09", time.Date(2024, 1, 9, 11, 0, 0, 0, f.loc)).Available)

	assert.Equal(t, []int{77}, f.metrics.observed)
	assert.Equal(t, "America/Mexico_City", resp.TimeZone)
	assert.Equal(t, 60, resp.SessionDurationMinutes)
	assert.Nil(t, resp.ForcedKind)
}

func TestExecute_ForcedRecurring(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingLink: link, Type: "recurring"})
	require.NoError(t, err)
	require.NotNil(t, resp.ForcedKind)
	assert.Equal(t, domain.KindRecurring, *resp.ForcedKind)

	resp, err = f.uc.Execute(context.Background(), &Request{BookingLink: link, Type: "weekly"})
	require.NoError(t, err)
	assert.Nil(t, resp.ForcedKind)
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{BookingLink: "unknown-link"})
	assert.ErrorIs(t, err, ErrTherapistNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{BookingLink: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{BookingLink: "a/b"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
