package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/reservation"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const link = "abcdef123456"

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type countingMetrics struct {
	created   map[string]int
	partial   int
	conflicts int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{created: make(map[string]int)}
}

func (m *countingMetrics) BookingCreated(kind string, n int) { m.created[kind] += n }
func (m *countingMetrics) PartialSeriesFailure() { m.partial++ }
func (m *countingMetrics) ReservationConflictHit() { m.conflicts++ }

// failingStore отказывает в записи заявки после failAfter успешных записей
type failingStore struct {
	*memory.Store
	failAfter int
	puts      int
}

func (s *failingStore) Put(ctx context.Context, collection, id string, value json.RawMessage) error {
	if strings.HasPrefix(collection, "public_bookings/") {
		if s.puts >= s.failAfter {
			return errors.New("network unreachable")
		}
		s.puts++
	}
	return s.Store.Put(ctx, collection, id, value)
}

// memoryReserver резервирование в памяти с той же семантикой, что и Redis
type memoryReserver struct {
	held map[string]string
}

func newMemoryReserver() *memoryReserver {
	return &memoryReserver{held: make(map[string]string)}
}

func (r *memoryReserver) Reserve(_ context.Context, bookingLink string, tr domain.TimeRange, holder string) error {
	key := reservation.Key(bookingLink, tr)
	if _, ok := r.held[key]; ok {
		return reservation.ErrSlotTaken
	}
	r.held[key] = holder
	return nil
}

func (r *memoryReserver) Release(_ context.Context, bookingLink string, tr domain.TimeRange, holder string) error {
	key := reservation.Key(bookingLink, tr)
	if r.held[key] == holder {
		delete(r.held, key)
	}
	return nil
}

type fixture struct {
	store        *memory.Store
	bookings     *booking.Repository
	appointments *appointment.Repository
	therapists   *therapist.Repository
	metrics      *countingMetrics
	now          time.Time
}

func newFixture(t *testing.T, s booking.Store) *fixture {
	t.Helper()
	mem := memory.NewStore()
	if s == nil {
		s = mem
	}
	if fs, ok := s.(*failingStore); ok {
		mem = fs.Store
	}

	f := &fixture{
		store:        mem,
		bookings:     booking.NewRepository(s),
		appointments: appointment.NewRepository(mem),
		therapists:   therapist.NewRepository(mem),
		metrics:      newCountingMetrics(),
		now:          time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.therapists.Put(context.Background(), &domain.TherapistProfile{
		ID:          "user-1",
		UserID:      "user-1",
		Name:        "Dra. Sofía Ruiz",
		Email:       "sofia@example.com",
		Schedule:    domain.DefaultSchedule(),
		BookingLink: link,
	}))
	return f
}

func (f *fixture) useCase(reserver Reserver, opts Options) *UseCase {
	if reserver == nil {
		reserver = reservation.Noop{}
	}
	if opts.DefaultOccurrences == 0 {
		opts.DefaultOccurrences = 12
	}
	if opts.MaxOccurrences == 0 {
		opts.MaxOccurrences = 52
	}
	return NewUseCase(f.therapists, f.bookings, f.appointments, reserver, f.metrics, opts, logger.Nop()).
		WithTimeProvider(fixedTime{t: f.now})
}

func validRequest() *Request {
	return &Request{
		BookingLink:  link,
		PatientName:  " Ana López ",
		PatientEmail: "ana@example.com",
		PatientPhone: ptr.Ptr(""),
		StartTime:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Type:         "one-time",
		Notes:        ptr.Ptr("primera consulta"),
	}
}

func TestExecute_OneTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	resp, err := f.useCase(nil, Options{}).Execute(ctx, validRequest())
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Nil(t, resp.SeriesID)
	assert.Equal(t, "pending", resp.Bookings[0].Status)

	stored, err := f.bookings.GetByID(ctx, link, resp.Bookings[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana López", stored.PatientName)
	assert.Nil(t, stored.PatientPhone)
	assert.Equal(t, domain.SourcePublicBooking, stored.Source)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.True(t, stored.CreatedAt.Equal(f.now))

	assert.Equal(t, 1, f.metrics.created["one-time"])
}

func TestExecute_RecurringSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	req := validRequest()
	req.Type = "recurring"
	req.Occurrences = 3

	resp, err := f.useCase(nil, Options{}).Execute(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resp.SeriesID)
	require.Len(t, resp.Bookings, 3)

	wantDays := []int{1, 8, 15}
	for i, b := range resp.Bookings {
		assert.Equal(t, time.Date(2024, 1, wantDays[i], 9, 0, 0, 0, time.UTC), b.StartTime.UTC())
		assert.Equal(t, time.Hour, b.EndTime.Sub(b.StartTime))
	}

	series, err := f.bookings.ListBySeries(ctx, link, *resp.SeriesID)
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestExecute_RecurringDefaultOccurrences(t *testing.T) {
	f := newFixture(t, nil)

	req := validRequest()
	req.Type = "recurring"

	resp, err := f.useCase(nil, Options{}).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 12)
	assert.Equal(t, 12, f.metrics.created["recurring"])
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "empty name", mutate: func(r *Request) { r.PatientName = "  " }},
		{name: "empty email", mutate: func(r *Request) { r.PatientEmail = "" }},
		{name: "malformed email", mutate: func(r *Request) { r.PatientEmail = "not-an-email" }},
		{name: "end before start", mutate: func(r *Request) { r.EndTime = r.StartTime.Add(-time.Hour) }},
		{name: "end equals start", mutate: func(r *Request) { r.EndTime = r.StartTime }},
		{name: "unknown type", mutate: func(r *Request) { r.Type = "weekly" }},
		{name: "too many occurrences", mutate: func(r *Request) { r.Type = "recurring"; r.Occurrences = 100 }},
		{name: "notes too long", mutate: func(r *Request) { r.Notes = ptr.Ptr(strings.Repeat("a", 1001)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, nil)

			req := validRequest()
			tt.mutate(req)

			_, err := f.useCase(nil, Options{}).Execute(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidInput)

			// ни одной записи до валидации
			all, err := f.bookings.ListByLink(ctx, link)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestValidateRequest_OccurrencesMessage(t *testing.T) {
	tests := []struct {
		name        string
		occurrences int
		max         int
		want        string
		notWant     string
	}{
		{name: "negative, unbounded", occurrences: -1, max: 0, want: "must not be negative", notWant: "between 1 and 0"},
		{name: "negative, bounded", occurrences: -3, max: 52, want: "must not be negative"},
		{name: "above max", occurrences: 60, max: 52, want: "between 1 and 52"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Type = "recurring"
			req.Occurrences = tt.occurrences

			_, _, err := validateRequest(req, Options{MaxOccurrences: tt.max})
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, err.Error(), tt.notWant)
			}
		})
	}

	// без ограничения сверху большая серия допустима
	req := validRequest()
	req.Type = "recurring"
	req.Occurrences = 500
	_, _, err := validateRequest(req, Options{})
	assert.NoError(t, err)
}

func TestExecute_UnknownLink(t *testing.T) {
	f := newFixture(t, nil)

	req := validRequest()
	req.BookingLink = "zzzzzzzzzzzz"

	_, err := f.useCase(nil, Options{}).Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrTherapistNotFound)
}

func TestExecute_RaceAcceptedByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	uc := f.useCase(nil, Options{})

	_, err := uc.Execute(ctx, validRequest())
	require.NoError(t, err)
	_, err = uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	all, err := f.bookings.ListByLink(ctx, link)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestExecute_RejectConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	uc := f.useCase(nil, Options{RejectConflicts: true})

	_, err := uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	_, err = uc.Execute(ctx, validRequest())
	assert.ErrorIs(t, err, ErrSlotConflict)

	// соседний слот не конфликтует
	req := validRequest()
	req.StartTime = req.StartTime.Add(time.Hour)
	req.EndTime = req.EndTime.Add(time.Hour)
	_, err = uc.Execute(ctx, req)
	require.NoError(t, err)

	// серия, у которой третья неделя пересекается со встречей
	r, err := domain.NewTimeRangeFromDuration(time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC), time.Hour)
	require.NoError(t, err)
	_, err = f.appointments.Create(ctx, &domain.Appointment{
		TherapistID: "user-1", PatientName: "María", PatientEmail: "maria@example.com",
		Range: r, Kind: domain.KindOneTime, Status: domain.AppointmentScheduled,
	})
	require.NoError(t, err)

	req = validRequest()
	req.Type = "recurring"
	req.Occurrences = 4
	req.StartTime = time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	req.EndTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestExecute_Reservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	reserver := newMemoryReserver()
	uc := f.useCase(reserver, Options{})

	_, err := uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	_, err = uc.Execute(ctx, validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, 1, f.metrics.conflicts)

	// серия, вторая неделя которой уже занята, не оставляет удержаний
	req := validRequest()
	req.Type = "recurring"
	req.Occurrences = 2
	req.StartTime = time.Date(2023, 12, 25, 9, 0, 0, 0, time.UTC)
	req.EndTime = time.Date(2023, 12, 25, 10, 0, 0, 0, time.UTC)
	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Len(t, reserver.held, 1)

	all, err := f.bookings.ListByLink(ctx, link)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExecute_PartialSeries(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Store: memory.NewStore(), failAfter: 2}
	f := newFixture(t, fs)

	req := validRequest()
	req.Type = "recurring"
	req.Occurrences = 5

	_, err := f.useCase(nil, Options{}).Execute(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialSeries)

	var partial *PartialSeriesError
	require.True(t, errors.As(err, &partial))
	assert.Len(t, partial.PersistedIDs, 2)
	assert.Equal(t, 2, partial.Failed)
	assert.Equal(t, 5, partial.Total)
	assert.NotEmpty(t, partial.SeriesID)
	assert.Equal(t, 1, f.metrics.partial)

	// первые две записи остаются, отката нет
	stored, err := f.bookings.ListBySeries(ctx, link, partial.SeriesID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	ids := []string{stored[0].ID, stored[1].ID}
	assert.ElementsMatch(t, partial.PersistedIDs, ids)
}

func TestExecute_FirstWriteFails(t *testing.T) {
	fs := &failingStore{Store: memory.NewStore(), failAfter: 0}
	f := newFixture(t, fs)

	req := validRequest()
	req.Type = "recurring"
	req.Occurrences = 3

	_, err := f.useCase(nil, Options{}).Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrPartialSeries)
}

func TestExecute_AtomicSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var notifications int
	unsubscribe, err := f.store.Subscribe(ctx, store.PublicBookingsPath(link), func(store.Snapshot) {
		notifications++
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()

	req := validRequest()
	req.Type = "recurring"
	req.Occurrences = 4

	resp, err := f.useCase(nil, Options{AtomicSeries: true}).Execute(ctx, req)
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 4)

	// начальный снимок и одно изменение на всю серию
	assert.Equal(t, 2, notifications)
}
