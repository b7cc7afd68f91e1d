package domain

import "time"

// TherapistProfile is the practitioner's public card plus scheduling configuration.
// Stored under therapists/{userId}.
type TherapistProfile struct {
	ID                 string
	UserID             string
	Name               string
	Email              string
	Specialization     *string
	Schedule           WorkingSchedule
	BookingLink        string
	CalendarIntegrated bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsSetup returns true when the profile can be published
func (p *TherapistProfile) IsSetup() bool {
	return p.Name != "" && p.Email != "" && p.Schedule.SessionDurationMinutes > 0
}

// OwnsLink checks that the booking link belongs to this practitioner
func (p *TherapistProfile) OwnsLink(bookingLink string) bool {
	return p.BookingLink != "" && p.BookingLink == bookingLink
}
