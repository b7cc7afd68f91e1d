package approve_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/meetingservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const (
	userID = "user-1"
	link   = "abcdef123456"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type decisions struct {
	mu  sync.Mutex
	got []string
}

func (d *decisions) Decision(decision string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, decision)
}

// failingAppointments отказывает в создании встречи, начиная с вызова failOn (с единицы)
type failingAppointments struct {
	*appointment.Repository
	failOn int
	calls  int
}

func (r *failingAppointments) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.calls++
	if r.calls >= r.failOn {
		return nil, errors.New("connection reset")
	}
	return r.Repository.Create(ctx, a)
}

type fakeMeetings struct {
	calls int
	err   error
}

func (m *fakeMeetings) CreateMeetingWithGracefulDegradation(_ context.Context, req meetingservice.MeetingRequest) (*meetingservice.Meeting, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &meetingservice.Meeting{MeetingLink: "https://meet.example.com/" + req.StartTime, CalendarEventID: "evt"}, nil
}

type fixture struct {
	therapists   *therapist.Repository
	bookings     *booking.Repository
	appointments *appointment.Repository
	decisions    *decisions
	now          time.Time
}

func newFixture(t *testing.T, integrated bool) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{
		therapists:   therapist.NewRepository(s),
		bookings:     booking.NewRepository(s),
		appointments: appointment.NewRepository(s),
		decisions:    &decisions{},
		now:          time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.therapists.Put(context.Background(), &domain.TherapistProfile{
		ID:                 userID,
		UserID:             userID,
		Name:               "Dra. Sofía Ruiz",
		Email:              "sofia@example.com",
		Schedule:           domain.DefaultSchedule(),
		BookingLink:        link,
		CalendarIntegrated: integrated,
	}))
	return f
}

func (f *fixture) useCase(meetings MeetingClient, opts Options) *UseCase {
	return NewUseCase(f.therapists, f.bookings, f.appointments, meetings, f.decisions, opts, logger.Nop()).
		WithTimeProvider(fixedTime{t: f.now})
}

func (f *fixture) addBooking(t *testing.T, start time.Time, kind domain.BookingKind, seriesID *string) *domain.BookingRecord {
	t.Helper()
	r, err := domain.NewTimeRangeFromDuration(start, time.Hour)
	require.NoError(t, err)
	b, err := f.bookings.Create(context.Background(), &domain.BookingRecord{
		BookingLink:  link,
		SeriesID:     seriesID,
		PatientName:  "Ana López",
		PatientEmail: "ana@example.com",
		Range:        r,
		Kind:         kind,
		Status:       domain.BookingPending,
		Source:       domain.SourcePublicBooking,
	})
	require.NoError(t, err)
	return b
}

func TestExecute_OneTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	start := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	b := f.addBooking(t, start, domain.KindOneTime, nil)

	resp, err := f.useCase(nil, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, []string{b.ID}, resp.ApprovedBookingIDs)

	appts, err := f.appointments.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, domain.AppointmentScheduled, appts[0].Status)
	assert.Equal(t, "Ana López", appts[0].PatientName)
	assert.True(t, appts[0].Range.Start().Equal(start))
	assert.Nil(t, appts[0].ExternalMeetingLink)

	pending, err := f.bookings.ListPending(ctx, link)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored, err := f.bookings.GetByID(ctx, link, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, stored.Status)
	assert.Equal(t, []string{"approved"}, f.decisions.got)
}

func TestExecute_SeriesPromotedOneToOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	series := ptr.Ptr("series-1")
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	var first *domain.BookingRecord
	for i := 0; i < 3; i++ {
		b := f.addBooking(t, base.AddDate(0, 0, 7*i), domain.KindRecurring, series)
		if i == 1 {
			first = b
		}
	}
	// другая заявка остается ожидающей
	other := f.addBooking(t, base.Add(2*time.Hour), domain.KindOneTime, nil)

	resp, err := f.useCase(nil, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: first.ID})
	require.NoError(t, err)
	assert.Len(t, resp.ApprovedBookingIDs, 3)
	require.Len(t, resp.Appointments, 3)

	appts, err := f.appointments.ListBySeries(ctx, userID, "series-1")
	require.NoError(t, err)
	require.Len(t, appts, 3)
	for i, a := range appts {
		assert.True(t, a.Range.Start().Equal(base.AddDate(0, 0, 7*i)))
		assert.Equal(t, domain.KindRecurring, a.Kind)
	}

	pending, err := f.bookings.ListPending(ctx, link)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].ID)
}

func TestExecute_LegacyRecurringReexpands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.KindRecurring, nil)

	resp, err := f.useCase(nil, Options{DefaultOccurrences: 12}).Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 12)
	assert.Equal(t, []string{b.ID}, resp.ApprovedBookingIDs)

	appts, err := f.appointments.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, appts, 12)
	assert.Equal(t, 7*24*time.Hour, appts[1].Range.Start().Sub(appts[0].Range.Start()))
}

func TestExecute_NotPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.KindOneTime, nil)
	uc := f.useCase(nil, Options{})

	_, err := uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	appts, err := f.appointments.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	uc := f.useCase(nil, Options{})

	_, err := uc.Execute(ctx, &Request{UserID: userID, BookingID: "missing"})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = uc.Execute(ctx, &Request{UserID: "stranger", BookingID: "x"})
	assert.ErrorIs(t, err, ErrTherapistNotFound)

	_, err = uc.Execute(ctx, &Request{UserID: "", BookingID: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, f.therapists.Put(ctx, &domain.TherapistProfile{ID: "user-2", UserID: "user-2", Schedule: domain.DefaultSchedule()}))
	_, err = uc.Execute(ctx, &Request{UserID: "user-2", BookingID: "x"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_RecheckOnApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	start := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)

	b1 := f.addBooking(t, start, domain.KindOneTime, nil)
	b2 := f.addBooking(t, start.Add(30*time.Minute), domain.KindOneTime, nil)

	uc := f.useCase(nil, Options{RecheckOnApprove: true})
	_, err := uc.Execute(ctx, &Request{UserID: userID, BookingID: b1.ID})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, &Request{UserID: userID, BookingID: b2.ID})
	assert.ErrorIs(t, err, ErrSlotConflict)

	stored, err := f.bookings.GetByID(ctx, link, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)

	// без перепроверки гонка принимается
	_, err = f.useCase(nil, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: b2.ID})
	require.NoError(t, err)
}

func TestExecute_MeetingLinks(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, true)
	b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.KindOneTime, nil)
	meetings := &fakeMeetings{}

	resp, err := f.useCase(meetings, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	require.NotNil(t, resp.Appointments[0].MeetingLink)
	assert.Equal(t, "https://meet.example.com/2024-01-08T15:00:00.000Z", *resp.Appointments[0].MeetingLink)
	assert.Equal(t, 1, meetings.calls)

	// недоступность интеграции не мешает подтверждению
	b2 := f.addBooking(t, time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC), domain.KindOneTime, nil)
	degraded := &fakeMeetings{err: errors.New("degraded")}
	resp, err = f.useCase(degraded, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: b2.ID})
	require.NoError(t, err)
	assert.Nil(t, resp.Appointments[0].MeetingLink)

	// календарь не подключен: интеграция не вызывается
	f2 := newFixture(t, false)
	b3 := f2.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.KindOneTime, nil)
	unused := &fakeMeetings{}
	_, err = f2.useCase(unused, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: b3.ID})
	require.NoError(t, err)
	assert.Zero(t, unused.calls)
}

func TestExecute_ConcurrentApproveCreatesOnce(t *testing.T) {
	ctx := context.Background()

	for run := 0; run < 50; run++ {
		f := newFixture(t, false)
		b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.KindOneTime, nil)
		uc := f.useCase(nil, Options{})

		const clicks = 4
		errs := make([]error, clicks)
		var wg sync.WaitGroup
		for i := 0; i < clicks; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
		assert.Equal(t, 1, succeeded, "run %d", run)

		appts, err := f.appointments.List(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, appts, 1, "run %d", run)
	}
}

func TestExecute_ConcurrentSeriesApproveNoDuplicates(t *testing.T) {
	ctx := context.Background()

	for run := 0; run < 30; run++ {
		f := newFixture(t, false)
		series := ptr.Ptr("series-c")
		base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
		ids := make([]string, 0, 4)
		for i := 0; i < 4; i++ {
			ids = append(ids, f.addBooking(t, base.AddDate(0, 0, 7*i), domain.KindRecurring, series).ID)
		}
		uc := f.useCase(nil, Options{})

		var wg sync.WaitGroup
		for _, id := range ids[:2] {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := uc.Execute(ctx, &Request{UserID: userID, BookingID: id})
				if err != nil {
					assert.ErrorIs(t, err, ErrInvalidTransition)
				}
			}(id)
		}
		wg.Wait()

		appts, err := f.appointments.ListBySeries(ctx, userID, "series-c")
		require.NoError(t, err)
		require.Len(t, appts, 4, "run %d", run)
		for i, a := range appts {
			assert.True(t, a.Range.Start().Equal(base.AddDate(0, 0, 7*i)), "run %d", run)
		}

		pending, err := f.bookings.ListPending(ctx, link)
		require.NoError(t, err)
		assert.Empty(t, pending)
	}
}

func TestExecute_AppointmentFailureReturnsBookingToPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.KindOneTime, nil)

	failing := &failingAppointments{Repository: f.appointments, failOn: 1}
	uc := NewUseCase(f.therapists, f.bookings, failing, nil, f.decisions, Options{}, logger.Nop()).
		WithTimeProvider(fixedTime{t: f.now})

	_, err := uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	assert.ErrorIs(t, err, ErrInternal)

	stored, err := f.bookings.GetByID(ctx, link, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.Empty(t, f.decisions.got)

	// повторное подтверждение создает ровно одну встречу
	resp, err := f.useCase(nil, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)

	appts, err := f.appointments.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestExecute_SeriesPartialFailureKeepsPromotedOccurrences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	series := ptr.Ptr("series-f")
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	var first *domain.BookingRecord
	for i := 0; i < 3; i++ {
		b := f.addBooking(t, base.AddDate(0, 0, 7*i), domain.KindRecurring, series)
		if i == 0 {
			first = b
		}
	}

	// вторая встреча не создается
	failing := &failingAppointments{Repository: f.appointments, failOn: 2}
	uc := NewUseCase(f.therapists, f.bookings, failing, nil, f.decisions, Options{}, logger.Nop()).
		WithTimeProvider(fixedTime{t: f.now})

	_, err := uc.Execute(ctx, &Request{UserID: userID, BookingID: first.ID})
	assert.ErrorIs(t, err, ErrInternal)

	pending, err := f.bookings.ListPending(ctx, link)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// повтор продвигает только оставшиеся заявки
	resp, err := f.useCase(nil, Options{}).Execute(ctx, &Request{UserID: userID, BookingID: pending[0].ID})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)

	appts, err := f.appointments.ListBySeries(ctx, userID, "series-f")
	require.NoError(t, err)
	assert.Len(t, appts, 3)
}
