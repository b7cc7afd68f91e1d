package meetingservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

func sampleRequest() MeetingRequest {
	return MeetingRequest{
		TherapistID:   "user-1",
		Title:         "Sesión con Ana",
		AttendeeEmail: "ana@example.com",
		StartTime:     "2024-01-08T15:00:00.000Z",
		EndTime:       "2024-01-08T16:00:00.000Z",
	}
}

func TestClient_CreateMeeting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/meetings", r.URL.Path)

		var req MeetingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.TherapistID)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Meeting{MeetingLink: "https://meet.example.com/x", CalendarEventID: "evt-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, logger.Nop())
	meeting, err := c.CreateMeeting(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/x", meeting.MeetingLink)
	assert.Equal(t, "evt-1", meeting.CalendarEventID)
}

func TestClient_GracefulDegradation(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "calendar not connected", status: http.StatusPreconditionFailed, wantErr: ErrCalendarNotConnected},
		{name: "server error", status: http.StatusBadGateway, wantErr: ErrServiceDegraded},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrServiceDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second, logger.Nop())
			_, err := c.CreateMeetingWithGracefulDegradation(context.Background(), sampleRequest())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, logger.Nop())
	_, err := c.CreateMeetingWithGracefulDegradation(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrServiceDegraded)
}
