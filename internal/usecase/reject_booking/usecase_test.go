package reject_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
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

type releases struct {
	mu      sync.Mutex
	holders []string
}

func (r *releases) Release(_ context.Context, _ string, _ domain.TimeRange, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holders = append(r.holders, holder)
	return nil
}

type fixture struct {
	bookings  *booking.Repository
	released  *releases
	decisions *decisions
	uc        *UseCase
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	therapists := therapist.NewRepository(s)
	require.NoError(t, therapists.Put(context.Background(), &domain.TherapistProfile{
		ID:          userID,
		UserID:      userID,
		Name:        "Dra. Sofía Ruiz",
		Email:       "sofia@example.com",
		Schedule:    domain.DefaultSchedule(),
		BookingLink: link,
	}))

	f := &fixture{
		bookings:  booking.NewRepository(s),
		released:  &releases{},
		decisions: &decisions{},
		now:       time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	f.uc = NewUseCase(therapists, f.bookings, f.released, f.decisions, logger.Nop()).
		WithTimeProvider(fixedTime{t: f.now})
	return f
}

func (f *fixture) addBooking(t *testing.T, start time.Time, seriesID *string) *domain.BookingRecord {
	t.Helper()
	r, err := domain.NewTimeRangeFromDuration(start, time.Hour)
	require.NoError(t, err)
	kind := domain.KindOneTime
	if seriesID != nil {
		kind = domain.KindRecurring
	}
	b, err := f.bookings.Create(context.Background(), &domain.BookingRecord{
		BookingLink: link, SeriesID: seriesID, PatientName: "Ana", PatientEmail: "ana@example.com",
		Range: r, Kind: kind, Status: domain.BookingPending,
	})
	require.NoError(t, err)
	return b
}

func TestExecute_RejectOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), nil)
	keep := f.addBooking(t, time.Date(2024, 1, 8, 16, 0, 0, 0, time.UTC), nil)

	resp, err := f.uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, resp.RejectedBookingIDs)

	stored, err := f.bookings.GetByID(ctx, link, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, stored.Status)
	assert.True(t, stored.UpdatedAt.Equal(f.now))

	pending, err := f.bookings.ListPending(ctx, link)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, keep.ID, pending[0].ID)

	assert.Equal(t, []string{b.ID}, f.released.holders)
	assert.Equal(t, []string{"rejected"}, f.decisions.got)
}

func TestExecute_RejectedIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), nil)

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecute_RejectSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	series := ptr.Ptr("series-1")
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)

	var target *domain.BookingRecord
	for i := 0; i < 3; i++ {
		b := f.addBooking(t, base.AddDate(0, 0, 7*i), series)
		if i == 0 {
			target = b
		}
	}

	resp, err := f.uc.Execute(ctx, &Request{UserID: userID, BookingID: target.ID})
	require.NoError(t, err)
	assert.Len(t, resp.RejectedBookingIDs, 3)

	pending, err := f.bookings.ListPending(ctx, link)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExecute_ConcurrentRejectOnce(t *testing.T) {
	ctx := context.Background()

	for run := 0; run < 50; run++ {
		f := newFixture(t)
		b := f.addBooking(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), nil)

		const clicks = 4
		errs := make([]error, clicks)
		var wg sync.WaitGroup
		for i := 0; i < clicks; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.uc.Execute(ctx, &Request{UserID: userID, BookingID: b.ID})
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
		assert.Equal(t, []string{b.ID}, f.released.holders, "run %d", run)
	}
}

func TestExecute_ApprovedMeanwhileIsNotRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	series := ptr.Ptr("series-2")
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)

	first := f.addBooking(t, base, series)
	second := f.addBooking(t, base.AddDate(0, 0, 7), series)

	// вторую заявку уже подтвердили в другом запросе
	require.NoError(t, f.bookings.TransitionStatus(ctx, link, second.ID, domain.BookingPending, domain.BookingApproved, f.now))

	resp, err := f.uc.Execute(ctx, &Request{UserID: userID, BookingID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, resp.RejectedBookingIDs)

	stored, err := f.bookings.GetByID(ctx, link, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, stored.Status)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, BookingID: "missing"})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.uc.Execute(ctx, &Request{UserID: "stranger", BookingID: "x"})
	assert.ErrorIs(t, err, ErrTherapistNotFound)

	_, err = f.uc.Execute(ctx, &Request{UserID: userID, BookingID: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
