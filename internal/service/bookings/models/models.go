package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListBookingsRequest запрос на получение заявок практикующего
type ListBookingsRequest struct {
	UserID string  `json:"userId"`
	Status *string `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// Response модели

// BookingResponse ответ с данными заявки
type BookingResponse struct {
	ID           string    `json:"id"`
	SeriesID     *string   `json:"seriesId,omitempty"`
	PatientName  string    `json:"patientName"`
	PatientEmail string    `json:"patientEmail"`
	PatientPhone *string   `json:"patientPhone,omitempty"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// BookingListResponse ответ со списком заявок
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.BookingRecord) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:           b.ID,
		SeriesID:     b.SeriesID,
		PatientName:  b.PatientName,
		PatientEmail: b.PatientEmail,
		PatientPhone: b.PatientPhone,
		StartTime:    b.Range.Start().UTC(),
		EndTime:      b.Range.End().UTC(),
		Type:         string(b.Kind),
		Status:       string(b.Status),
		Notes:        b.Notes,
		CreatedAt:    b.CreatedAt.UTC(),
		UpdatedAt:    b.UpdatedAt.UTC(),
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.BookingRecord) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Total:    len(bookings),
	}
	for _, b := range bookings {
		if r := FromDomainBooking(b); r != nil {
			resp.Bookings = append(resp.Bookings, *r)
		}
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch s := domain.BookingStatus(status); s {
	case domain.BookingPending, domain.BookingApproved, domain.BookingRejected:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}
