package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type fakeUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

func serve(t *testing.T, uc *fakeUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/book/{bookingLink}/bookings", NewHandler(uc, logger.Nop()).Handle).Methods(http.MethodPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/book/abcdef123456/bookings", strings.NewReader(body)))
	return w
}

const validBody = `{
	"patientName": "Ana",
	"patientEmail": "ana@example.com",
	"startTime": "2024-01-08T15:00:00.000Z",
	"endTime": "2024-01-08T16:00:00.000Z",
	"type": "one-time"
}`

func TestHandle_Created(t *testing.T) {
	start := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &createBooking.Response{
		Type: "one-time",
		Bookings: []createBooking.Booking{{
			ID:        "b-1",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    "pending",
			CreatedAt: start.Add(-24 * time.Hour),
		}},
	}}

	w := serve(t, uc, validBody)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, "abcdef123456", uc.got.BookingLink)
	assert.True(t, uc.got.StartTime.Equal(start))

	var resp CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "2024-01-08T15:00:00.000Z", resp.Bookings[0].StartTime)
	assert.Equal(t, "2024-01-08T16:00:00.000Z", resp.Bookings[0].EndTime)
	assert.Equal(t, "pending", resp.Bookings[0].Status)
}

func TestHandle_BadRequests(t *testing.T) {
	uc := &fakeUseCase{}

	w := serve(t, uc, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, uc, strings.Replace(validBody, "2024-01-08T15:00:00.000Z", "08/01/2024 15:00", 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "invalid input", err: createBooking.ErrInvalidInput, code: http.StatusBadRequest},
		{name: "unknown link", err: createBooking.ErrTherapistNotFound, code: http.StatusNotFound},
		{name: "conflict", err: createBooking.ErrSlotConflict, code: http.StatusConflict},
		{name: "taken", err: createBooking.ErrSlotTaken, code: http.StatusConflict},
		{name: "internal", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, &fakeUseCase{err: tt.err}, validBody)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandle_PartialSeries(t *testing.T) {
	uc := &fakeUseCase{err: &createBooking.PartialSeriesError{
		SeriesID:     "s-1",
		PersistedIDs: []string{"b-1", "b-2"},
		Failed:       2,
		Total:        12,
		Cause:        errors.New("store unavailable"),
	}}

	w := serve(t, uc, validBody)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Error   string               `json:"error"`
		Details PartialSeriesDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, msgPartialSeries, resp.Error)
	assert.Equal(t, "s-1", resp.Details.SeriesID)
	assert.Equal(t, []string{"b-1", "b-2"}, resp.Details.PersistedIDs)
	assert.Equal(t, 12, resp.Details.Total)
}
