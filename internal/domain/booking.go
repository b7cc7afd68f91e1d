package domain

import (
	"fmt"
	"time"
)

// BookingKind distinguishes a single session from a weekly series
type BookingKind string

const (
	KindOneTime   BookingKind = "one-time"
	KindRecurring BookingKind = "recurring"
)

// ParseBookingKind accepts the stored kind values; empty means one-time
func ParseBookingKind(s string) (BookingKind, error) {
	switch BookingKind(s) {
	case "", KindOneTime:
		return KindOneTime, nil
	case KindRecurring:
		return KindRecurring, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// BookingStatus represents the status of a public booking request
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending: {BookingApproved, BookingRejected},
}

// CanTransitionTo reports whether the booking state machine allows from -> to
func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for approved and rejected bookings
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// BookingRecord is one occurrence of a visitor-submitted reservation request.
// A recurring request is stored as one record per occurrence sharing SeriesID.
type BookingRecord struct {
	ID           string
	BookingLink  string
	SeriesID     *string
	PatientName  string
	PatientEmail string
	PatientPhone *string
	Range        TimeRange
	Kind         BookingKind
	Notes        *string
	Status       BookingStatus
	Source       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPending returns true while the practitioner has not decided on the booking
func (b *BookingRecord) IsPending() bool {
	return b.Status == BookingPending
}

// IsActive returns true if the booking still holds its time range
func (b *BookingRecord) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingApproved
}

// InSeries returns true if the record belongs to a recurring series with a known id
func (b *BookingRecord) InSeries() bool {
	return b.SeriesID != nil && *b.SeriesID != ""
}

// TransitionTo applies a status change or returns ErrInvalidTransition
func (b *BookingRecord) TransitionTo(to BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: booking %s %s -> %s", ErrInvalidTransition, b.ID, b.Status, to)
	}
	b.Status = to
	b.UpdatedAt = now
	return nil
}
