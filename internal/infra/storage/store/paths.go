package store

import (
	"fmt"
	"strings"
)

const (
	appointmentsRoot   = "appointments"
	therapistsRoot     = "therapists"
	publicBookingsRoot = "public_bookings"
)

// AppointmentsPath collection of one practitioner's appointments
func AppointmentsPath(therapistID string) string {
	return appointmentsRoot + "/" + therapistID
}

// TherapistsPath collection of practitioner profiles keyed by user id
func TherapistsPath() string {
	return therapistsRoot
}

// PublicBookingsPath collection of booking requests received through one link
func PublicBookingsPath(bookingLink string) string {
	return publicBookingsRoot + "/" + bookingLink
}

// ValidatePath checks that collection and id are usable keys
func ValidatePath(collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: id %q", ErrInvalidPath, id)
	}
	return nil
}

// ValidateCollection rejects empty segments such as "appointments/"
func ValidateCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidPath)
	}
	for _, part := range strings.Split(collection, "/") {
		if part == "" {
			return fmt.Errorf("%w: collection %q", ErrInvalidPath, collection)
		}
	}
	return nil
}
