package domain

import "errors"

var (
	// ErrInvalidTimeRange is returned when end is not strictly after start
	ErrInvalidTimeRange = errors.New("domain: invalid time range")

	// ErrInvalidSchedule is returned when a working schedule is inconsistent
	ErrInvalidSchedule = errors.New("domain: invalid working schedule")

	// ErrInvalidTransition is returned when a status change is not allowed
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrInvalidStatus is returned for an unknown status value
	ErrInvalidStatus = errors.New("domain: invalid status")

	// ErrInvalidKind is returned for an unknown booking kind
	ErrInvalidKind = errors.New("domain: invalid booking kind")
)
