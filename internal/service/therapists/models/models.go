package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модели

// EnsureProfileRequest данные для создания профиля по умолчанию
type EnsureProfileRequest struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// UpdateProfileRequest частичное обновление профиля: nil поля не меняются
type UpdateProfileRequest struct {
	Name                     *string            `json:"name,omitempty"`
	Email                    *string            `json:"email,omitempty"`
	Specialization           *string            `json:"specialization,omitempty"`
	SessionDuration          *int               `json:"sessionDuration,omitempty"`
	WorkingHours             *WorkingHoursModel `json:"workingHours,omitempty"`
	WorkingDays              []int              `json:"workingDays,omitempty"`
	TimeZone                 *string            `json:"timeZone,omitempty"`
	GoogleCalendarIntegrated *bool              `json:"googleCalendarIntegrated,omitempty"`
}

// WorkingHoursModel рабочее окно "HH:MM"
type WorkingHoursModel struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Response модели

// ProfileResponse профиль для самого практикующего
type ProfileResponse struct {
	ID                       string            `json:"id"`
	UserID                   string            `json:"userId"`
	Name                     string            `json:"name"`
	Email                    string            `json:"email"`
	Specialization           *string           `json:"specialization,omitempty"`
	SessionDuration          int               `json:"sessionDuration"`
	WorkingHours             WorkingHoursModel `json:"workingHours"`
	WorkingDays              []int             `json:"workingDays"`
	TimeZone                 string            `json:"timeZone"`
	GoogleCalendarIntegrated bool              `json:"googleCalendarIntegrated"`
	BookingLink              string            `json:"bookingLink"`
	IsSetup                  bool              `json:"isSetup"`
	CreatedAt                time.Time         `json:"createdAt"`
	UpdatedAt                time.Time         `json:"updatedAt"`
}

// PublicProfileResponse карточка на публичной странице бронирования
type PublicProfileResponse struct {
	Name            string  `json:"name"`
	Specialization  *string `json:"specialization,omitempty"`
	SessionDuration int     `json:"sessionDuration"`
	TimeZone        string  `json:"timeZone"`
	ForcedType      *string `json:"forcedType,omitempty"`
}

// BookingLinkResponse новая публичная ссылка
type BookingLinkResponse struct {
	BookingLink string `json:"bookingLink"`
}

// FromDomainProfile конвертирует доменную модель в response
func FromDomainProfile(p *domain.TherapistProfile) *ProfileResponse {
	days := make([]int, 0, len(p.Schedule.WorkingDays))
	for _, d := range p.Schedule.WorkingDays {
		days = append(days, int(d))
	}
	return &ProfileResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		Name:            p.Name,
		Email:           p.Email,
		Specialization:  p.Specialization,
		SessionDuration: p.Schedule.SessionDurationMinutes,
		WorkingHours: WorkingHoursModel{
			Start: p.Schedule.WorkingHours.Start.String(),
			End:   p.Schedule.WorkingHours.End.String(),
		},
		WorkingDays:              days,
		TimeZone:                 p.Schedule.TimeZone,
		GoogleCalendarIntegrated: p.CalendarIntegrated,
		BookingLink:              p.BookingLink,
		IsSetup:                  p.IsSetup(),
		CreatedAt:                p.CreatedAt.UTC(),
		UpdatedAt:                p.UpdatedAt.UTC(),
	}
}

// FromDomainPublicProfile карточка без контактных данных
func FromDomainPublicProfile(p *domain.TherapistProfile, forced *domain.BookingKind) *PublicProfileResponse {
	res := &PublicProfileResponse{
		Name:            p.Name,
		Specialization:  p.Specialization,
		SessionDuration: p.Schedule.SessionDurationMinutes,
		TimeZone:        p.Schedule.TimeZone,
	}
	if forced != nil {
		kind := string(*forced)
		res.ForcedType = &kind
	}
	return res
}

// ApplyTo переносит изменения на профиль. Расписание проверяется целиком.
func (r *UpdateProfileRequest) ApplyTo(p *domain.TherapistProfile) error {
	schedule := p.Schedule
	if r.SessionDuration != nil {
		schedule.SessionDurationMinutes = *r.SessionDuration
	}
	if r.WorkingHours != nil {
		start, err := types.NewTimeStringFromString(r.WorkingHours.Start)
		if err != nil {
			return fmt.Errorf("working hours start: %w", err)
		}
		end, err := types.NewTimeStringFromString(r.WorkingHours.End)
		if err != nil {
			return fmt.Errorf("working hours end: %w", err)
		}
		schedule.WorkingHours = domain.WorkingHours{Start: start, End: end}
	}
	if r.WorkingDays != nil {
		days := make([]time.Weekday, 0, len(r.WorkingDays))
		for _, d := range r.WorkingDays {
			days = append(days, time.Weekday(d))
		}
		schedule.WorkingDays = days
	}
	if r.TimeZone != nil {
		schedule.TimeZone = *r.TimeZone
	}
	if err := schedule.Validate(); err != nil {
		return err
	}

	p.Schedule = schedule
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.Specialization != nil {
		if *r.Specialization == "" {
			p.Specialization = nil
		} else {
			spec := *r.Specialization
			p.Specialization = &spec
		}
	}
	if r.GoogleCalendarIntegrated != nil {
		p.CalendarIntegrated = *r.GoogleCalendarIntegrated
	}
	return nil
}
