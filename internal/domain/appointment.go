package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of a calendar entry
type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "scheduled"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled:   {AppointmentCompleted, AppointmentCancelled, AppointmentRescheduled},
	AppointmentRescheduled: {AppointmentScheduled, AppointmentCompleted, AppointmentCancelled},
}

// ParseAppointmentStatus validates a stored or requested status value
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentRescheduled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown appointment status %q", ErrInvalidStatus, s)
	}
}

// CanTransitionTo reports whether the appointment state machine allows from -> to
func (s AppointmentStatus) CanTransitionTo(to AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Appointment is a confirmed, practitioner-owned calendar entry
type Appointment struct {
	ID                  string
	TherapistID         string
	SeriesID            *string
	PatientName         string
	PatientEmail        string
	Range               TimeRange
	Kind                BookingKind
	Status              AppointmentStatus
	Notes               *string
	ExternalMeetingLink *string
	ExternalCalendarID  *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsActive returns true if the appointment still occupies its range on the calendar
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentScheduled || a.Status == AppointmentRescheduled
}

// InSeries returns true if the appointment belongs to a recurring series with a known id
func (a *Appointment) InSeries() bool {
	return a.SeriesID != nil && *a.SeriesID != ""
}

// TransitionTo applies a status change. Setting the current status again is a no-op.
func (a *Appointment) TransitionTo(to AppointmentStatus, now time.Time) error {
	if a.Status == to {
		return nil
	}
	if !a.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: appointment %s %s -> %s", ErrInvalidTransition, a.ID, a.Status, to)
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}

// AppointmentFromBooking copies an approved booking occurrence into a scheduled appointment
func AppointmentFromBooking(b *BookingRecord, therapistID string, r TimeRange, now time.Time) *Appointment {
	return &Appointment{
		TherapistID:  therapistID,
		SeriesID:     b.SeriesID,
		PatientName:  b.PatientName,
		PatientEmail: b.PatientEmail,
		Range:        r,
		Kind:         b.Kind,
		Status:       AppointmentScheduled,
		Notes:        b.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AppointmentStats aggregate counters for the practitioner dashboard
type AppointmentStats struct {
	Total         int
	Today         int
	ThisWeek      int
	TotalPatients int
	Recurring     int
	OneTime       int
}
