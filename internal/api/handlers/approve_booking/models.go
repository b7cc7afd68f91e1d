package approve_booking

import (
	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	approveBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/approve_booking"
)

// ApproveBookingResponse HTTP response model
type ApproveBookingResponse struct {
	ApprovedBookingIDs []string              `json:"approvedBookingIds"`
	Appointments       []AppointmentResponse `json:"appointments"`
}

// AppointmentResponse встреча, созданная из заявки
type AppointmentResponse struct {
	ID             string  `json:"id"`
	SeriesID       *string `json:"seriesId,omitempty"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	GoogleMeetLink *string `json:"googleMeetLink,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *approveBooking.Response) *ApproveBookingResponse {
	appointments := make([]AppointmentResponse, len(resp.Appointments))
	for i, a := range resp.Appointments {
		appointments[i] = AppointmentResponse{
			ID:             a.ID,
			SeriesID:       a.SeriesID,
			StartTime:      handlers.FormatTime(a.StartTime),
			EndTime:        handlers.FormatTime(a.EndTime),
			Type:           a.Type,
			Status:         a.Status,
			GoogleMeetLink: a.MeetingLink,
		}
	}

	return &ApproveBookingResponse{
		ApprovedBookingIDs: resp.ApprovedBookingIDs,
		Appointments:       appointments,
	}
}
