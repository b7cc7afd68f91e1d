package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модели

// CreateAppointmentRequest запрос на создание встречи практикующим.
// Для type=recurring создается серия из Weeks еженедельных встреч.
type CreateAppointmentRequest struct {
	PatientName  string    `json:"patientName"`
	PatientEmail string    `json:"patientEmail"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Type         string    `json:"type"`
	Weeks        int       `json:"weeks,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

// UpdateAppointmentRequest частичное обновление: nil поля не меняются
type UpdateAppointmentRequest struct {
	PatientName  *string    `json:"patientName,omitempty"`
	PatientEmail *string    `json:"patientEmail,omitempty"`
	StartTime    *time.Time `json:"startTime,omitempty"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// Response модели

// AppointmentResponse встреча в календаре практикующего
type AppointmentResponse struct {
	ID              string    `json:"id"`
	SeriesID        *string   `json:"seriesId,omitempty"`
	PatientName     string    `json:"patientName"`
	PatientEmail    string    `json:"patientEmail"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	MeetingLink     *string   `json:"googleMeetLink,omitempty"`
	CalendarEventID *string   `json:"googleCalendarId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AppointmentListResponse список встреч, отсортированный по началу
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// CancelSeriesResponse результат отмены серии
type CancelSeriesResponse struct {
	SeriesID     string   `json:"seriesId"`
	CancelledIDs []string `json:"cancelledIds"`
}

// StatsResponse счетчики для дашборда
type StatsResponse struct {
	Total         int `json:"total"`
	Today         int `json:"today"`
	ThisWeek      int `json:"thisWeek"`
	TotalPatients int `json:"totalPatients"`
	Recurring     int `json:"recurring"`
	OneTime       int `json:"oneTime"`
}

// FromDomainAppointment конвертирует доменную модель в response.
// Время отдается в UTC.
func FromDomainAppointment(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		SeriesID:        a.SeriesID,
		PatientName:     a.PatientName,
		PatientEmail:    a.PatientEmail,
		StartTime:       a.Range.Start().UTC(),
		EndTime:         a.Range.End().UTC(),
		Type:            string(a.Kind),
		Status:          string(a.Status),
		Notes:           a.Notes,
		MeetingLink:     a.ExternalMeetingLink,
		CalendarEventID: a.ExternalCalendarID,
		CreatedAt:       a.CreatedAt.UTC(),
		UpdatedAt:       a.UpdatedAt.UTC(),
	}
}

// FromDomainAppointmentList конвертирует список
func FromDomainAppointmentList(items []*domain.Appointment) *AppointmentListResponse {
	res := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(items)),
		Total:        len(items),
	}
	for _, a := range items {
		res.Appointments = append(res.Appointments, FromDomainAppointment(a))
	}
	return res
}

// FromDomainStats конвертирует счетчики
func FromDomainStats(s domain.AppointmentStats) *StatsResponse {
	return &StatsResponse{
		Total:         s.Total,
		Today:         s.Today,
		ThisWeek:      s.ThisWeek,
		TotalPatients: s.TotalPatients,
		Recurring:     s.Recurring,
		OneTime:       s.OneTime,
	}
}
