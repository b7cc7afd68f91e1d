package list_appointments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type fakeService struct {
	listed   bool
	from, to time.Time
}

func (f *fakeService) List(_ context.Context, _ string) (*models.AppointmentListResponse, error) {
	f.listed = true
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{}}, nil
}

func (f *fakeService) ListByRange(_ context.Context, _ string, from, to time.Time) (*models.AppointmentListResponse, error) {
	f.from, f.to = from, to
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{}}, nil
}

func serve(svc *fakeService, target string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r = r.WithContext(middleware.WithUserID(r.Context(), "user-1"))
	w := httptest.NewRecorder()
	NewHandler(svc, logger.Nop()).Handle(w, r)
	return w
}

func TestHandle_All(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/therapists/me/appointments")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.listed)
	assert.JSONEq(t, `{"appointments":[],"total":0}`, w.Body.String())
}

func TestHandle_Range(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/therapists/me/appointments?from=2024-01-08T00:00:00Z&to=2024-01-14T23:59:59.000-06:00")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.listed)
	assert.True(t, svc.from.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, svc.to.Equal(time.Date(2024, 1, 15, 5, 59, 59, 0, time.UTC)))
}

func TestHandle_InvalidRange(t *testing.T) {
	for _, target := range []string{
		"/therapists/me/appointments?from=2024-01-08T00:00:00Z",
		"/therapists/me/appointments?from=yesterday&to=today",
		"/therapists/me/appointments?from=2024-01-09T00:00:00Z&to=2024-01-08T00:00:00Z",
	} {
		w := serve(&fakeService{}, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}
