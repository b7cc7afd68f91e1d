package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const (
	userID = "user-1"
	link   = "abcdef123456"
)

func newService(t *testing.T) (*Service, *booking.Repository) {
	t.Helper()
	s := memory.NewStore()
	therapists := therapist.NewRepository(s)
	require.NoError(t, therapists.Put(context.Background(), &domain.TherapistProfile{
		ID: userID, UserID: userID, Name: "Dra. Ruiz", Email: "ruiz@example.com",
		Schedule: domain.DefaultSchedule(), BookingLink: link,
	}))
	require.NoError(t, therapists.Put(context.Background(), &domain.TherapistProfile{
		ID: "no-link", UserID: "no-link", Schedule: domain.DefaultSchedule(),
	}))

	bookings := booking.NewRepository(s)
	return NewService(bookings, therapists, logger.Nop()), bookings
}

func addBooking(t *testing.T, repo *booking.Repository, start time.Time, status domain.BookingStatus) *domain.BookingRecord {
	t.Helper()
	r, err := domain.NewTimeRangeFromDuration(start, time.Hour)
	require.NoError(t, err)
	b, err := repo.Create(context.Background(), &domain.BookingRecord{
		BookingLink: link, PatientName: "Ana", PatientEmail: "ana@example.com",
		Range: r, Kind: domain.KindOneTime, Status: status,
	})
	require.NoError(t, err)
	return b
}

func TestService_GetPendingSortedByStart(t *testing.T) {
	svc, repo := newService(t)
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)

	late := addBooking(t, repo, base.Add(48*time.Hour), domain.BookingPending)
	early := addBooking(t, repo, base, domain.BookingPending)
	addBooking(t, repo, base.Add(time.Hour), domain.BookingApproved)
	addBooking(t, repo, base.Add(2*time.Hour), domain.BookingRejected)

	resp, err := svc.GetPending(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, early.ID, resp.Bookings[0].ID)
	assert.Equal(t, late.ID, resp.Bookings[1].ID)
	assert.Equal(t, "pending", resp.Bookings[0].Status)
}

func TestService_List(t *testing.T) {
	svc, repo := newService(t)
	base := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	addBooking(t, repo, base, domain.BookingPending)
	approved := addBooking(t, repo, base.Add(time.Hour), domain.BookingApproved)

	all, err := svc.List(context.Background(), &models.ListBookingsRequest{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	filtered, err := svc.List(context.Background(), &models.ListBookingsRequest{UserID: userID, Status: ptr.Ptr("approved")})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Total)
	assert.Equal(t, approved.ID, filtered.Bookings[0].ID)

	_, err = svc.List(context.Background(), &models.ListBookingsRequest{UserID: userID, Status: ptr.Ptr("cancelled")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetByID(t *testing.T) {
	svc, repo := newService(t)
	b := addBooking(t, repo, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), domain.BookingPending)

	got, err := svc.GetByID(context.Background(), userID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.PatientName)
	assert.Equal(t, "one-time", got.Type)

	_, err = svc.GetByID(context.Background(), userID, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_Errors(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetPending(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrTherapistNotFound)

	_, err = svc.GetPending(context.Background(), "no-link")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), userID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
