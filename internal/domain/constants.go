package domain

import "time"

// Default practitioner profile values
const (
	DefaultSessionDurationMinutes = 60
	DefaultWorkingHoursStart      = "09:00"
	DefaultWorkingHoursEnd        = "17:00"
	DefaultTimeZone               = "America/Mexico_City"
)

// Slot grid and series parameters
const (
	DefaultHorizonDays = 14
	// SlotStepMinutes fixed grid between candidate slot starts, independent of session length
	SlotStepMinutes    = 60
	DefaultOccurrences = 12
	RecurrenceStepDays = 7
)

// Business validation constants
const (
	MinSessionDurationMinutes = 5
	MaxSessionDurationMinutes = 480 // 8 hours
	MaxNotesLength            = 1000
	MaxPatientNameLength      = 200
	BookingLinkLength         = 12
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
	// WireTimeFormat ISO-8601 with milliseconds in UTC, as persisted in documents
	WireTimeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// Document source markers
const (
	SourcePublicBooking = "public_booking"
)

// DefaultWorkingDays Monday to Friday (time.Weekday numbering, 0 = Sunday)
func DefaultWorkingDays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}
