package therapist

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

type workingHoursDocument struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// document формат therapists/{userId}
type document struct {
	ID                       string               `json:"id"`
	UserID                   string               `json:"userId"`
	Name                     string               `json:"name"`
	Email                    string               `json:"email"`
	Specialization           *string              `json:"specialization,omitempty"`
	SessionDuration          int                  `json:"sessionDuration"`
	WorkingHours             workingHoursDocument `json:"workingHours"`
	WorkingDays              []int                `json:"workingDays"`
	TimeZone                 string               `json:"timeZone"`
	GoogleCalendarIntegrated bool                 `json:"googleCalendarIntegrated"`
	BookingLink              string               `json:"bookingLink"`
	CreatedAt                string               `json:"createdAt"`
	UpdatedAt                string               `json:"updatedAt"`
}

func fromDomain(p *domain.TherapistProfile) document {
	return document{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		Email:          p.Email,
		Specialization: p.Specialization,
		SessionDuration: p.Schedule.SessionDurationMinutes,
		WorkingHours: workingHoursDocument{
			Start: p.Schedule.WorkingHours.Start,
			End:   p.Schedule.WorkingHours.End,
		},
		WorkingDays:              weekdaysToInts(p.Schedule.WorkingDays),
		TimeZone:                 p.Schedule.TimeZone,
		GoogleCalendarIntegrated: p.CalendarIntegrated,
		BookingLink:              p.BookingLink,
		CreatedAt:                store.FormatTime(p.CreatedAt),
		UpdatedAt:                store.FormatTime(p.UpdatedAt),
	}
}

func (d document) toDomain(key string) (*domain.TherapistProfile, error) {
	createdAt, err := store.ParseOptionalTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s createdAt: %v", ErrInvalidRecord, key, err)
	}
	updatedAt, err := store.ParseOptionalTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s updatedAt: %v", ErrInvalidRecord, key, err)
	}

	days := make([]time.Weekday, 0, len(d.WorkingDays))
	for _, n := range d.WorkingDays {
		if n < 0 || n > 6 {
			return nil, fmt.Errorf("%w: %s weekday %d", ErrInvalidRecord, key, n)
		}
		days = append(days, time.Weekday(n))
	}

	userID := d.UserID
	if userID == "" {
		userID = key
	}
	id := d.ID
	if id == "" {
		id = userID
	}

	return &domain.TherapistProfile{
		ID:             id,
		UserID:         userID,
		Name:           d.Name,
		Email:          d.Email,
		Specialization: d.Specialization,
		Schedule: domain.WorkingSchedule{
			SessionDurationMinutes: d.SessionDuration,
			WorkingDays:            days,
			WorkingHours: domain.WorkingHours{
				Start: d.WorkingHours.Start,
				End:   d.WorkingHours.End,
			},
			TimeZone: d.TimeZone,
		},
		BookingLink:        d.BookingLink,
		CalendarIntegrated: d.GoogleCalendarIntegrated,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

func weekdaysToInts(days []time.Weekday) []int {
	res := make([]int, 0, len(days))
	for _, d := range days {
		res = append(res, int(d))
	}
	return res
}
