package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	PatientName  string  `json:"patientName"`
	PatientEmail string  `json:"patientEmail"`
	PatientPhone *string `json:"patientPhone,omitempty"`
	StartTime    string  `json:"startTime"` // ISO-8601
	EndTime      string  `json:"endTime"`   // ISO-8601
	Type         string  `json:"type"`      // one-time | recurring
	Occurrences  int     `json:"occurrences,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	SeriesID *string           `json:"seriesId,omitempty"`
	Type     string            `json:"type"`
	Bookings []BookingResponse `json:"bookings"`
}

// BookingResponse одна созданная заявка
type BookingResponse struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// PartialSeriesDetails сохраненная часть серии
type PartialSeriesDetails struct {
	SeriesID     string   `json:"seriesId"`
	PersistedIDs []string `json:"persistedIds"`
	Total        int      `json:"total"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(bookingLink string) (*createBooking.Request, error) {
	start, err := handlers.ParseTime(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := handlers.ParseTime(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	return &createBooking.Request{
		BookingLink:  bookingLink,
		PatientName:  r.PatientName,
		PatientEmail: r.PatientEmail,
		PatientPhone: r.PatientPhone,
		StartTime:    start,
		EndTime:      end,
		Type:         r.Type,
		Occurrences:  r.Occurrences,
		Notes:        r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	bookings := make([]BookingResponse, len(resp.Bookings))
	for i, b := range resp.Bookings {
		bookings[i] = BookingResponse{
			ID:        b.ID,
			StartTime: handlers.FormatTime(b.StartTime),
			EndTime:   handlers.FormatTime(b.EndTime),
			Status:    b.Status,
			CreatedAt: handlers.FormatTime(b.CreatedAt),
		}
	}

	return &CreateBookingResponse{
		SeriesID: resp.SeriesID,
		Type:     resp.Type,
		Bookings: bookings,
	}
}
