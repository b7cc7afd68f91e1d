package meetingservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент сервиса календарной интеграции (создает событие и ссылку на видеозвонок)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateMeeting создает событие в календаре практикующего
func (c *Client) CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	url := fmt.Sprintf("%s/internal/meetings", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: request rejected", ErrInvalidResponse)
	case http.StatusNotFound, http.StatusPreconditionFailed:
		return nil, ErrCalendarNotConnected
	default:
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(data))
	}

	// Парсим ответ
	var meeting Meeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &meeting, nil
}

// CreateMeetingWithGracefulDegradation как CreateMeeting, но недоступность сервиса
// превращается в ErrServiceDegraded, чтобы встреча сохранилась без ссылки
func (c *Client) CreateMeetingWithGracefulDegradation(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	c.log.Info("Creating meeting for therapist_id=%s, start=%s", req.TherapistID, req.StartTime)

	meeting, err := c.CreateMeeting(ctx, req)
	if err != nil {
		// Календарь не подключен - это не сбой сервиса
		if errors.Is(err, ErrCalendarNotConnected) {
			c.log.Info("Calendar not connected for therapist_id=%s", req.TherapistID)
			return nil, err
		}

		c.log.Error("MeetingService unavailable, applying graceful degradation for therapist_id=%s: %v", req.TherapistID, err)
		return nil, fmt.Errorf("%w: therapist_id=%s, error=%v", ErrServiceDegraded, req.TherapistID, err)
	}

	c.log.Info("Successfully created meeting for therapist_id=%s, event=%s", req.TherapistID, meeting.CalendarEventID)
	return meeting, nil
}
