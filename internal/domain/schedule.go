package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// WorkingHours daily window in the practitioner's time zone
type WorkingHours struct {
	Start types.TimeString
	End   types.TimeString
}

// WorkingSchedule is the practitioner's configuration for slot generation.
// WorkingDays uses time.Weekday numbering (0 = Sunday), matching stored profiles
// where [1,2,3,4,5] means Monday to Friday.
type WorkingSchedule struct {
	SessionDurationMinutes int
	WorkingDays            []time.Weekday
	WorkingHours           WorkingHours
	TimeZone               string
}

// DefaultSchedule returns the schedule assigned to a freshly created profile
func DefaultSchedule() WorkingSchedule {
	return WorkingSchedule{
		SessionDurationMinutes: DefaultSessionDurationMinutes,
		WorkingDays:            DefaultWorkingDays(),
		WorkingHours: WorkingHours{
			Start: types.MustTimeString(DefaultWorkingHoursStart),
			End:   types.MustTimeString(DefaultWorkingHoursEnd),
		},
		TimeZone: DefaultTimeZone,
	}
}

// Validate checks the schedule invariants
func (s WorkingSchedule) Validate() error {
	if s.SessionDurationMinutes < MinSessionDurationMinutes || s.SessionDurationMinutes > MaxSessionDurationMinutes {
		return fmt.Errorf("%w: session duration must be between %d and %d minutes",
			ErrInvalidSchedule, MinSessionDurationMinutes, MaxSessionDurationMinutes)
	}

	seen := make(map[time.Weekday]bool, len(s.WorkingDays))
	for _, d := range s.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidSchedule, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: duplicate weekday %d", ErrInvalidSchedule, d)
		}
		seen[d] = true
	}

	if err := s.WorkingHours.Start.Validate(); err != nil {
		return fmt.Errorf("%w: working hours start: %v", ErrInvalidSchedule, err)
	}
	if err := s.WorkingHours.End.Validate(); err != nil {
		return fmt.Errorf("%w: working hours end: %v", ErrInvalidSchedule, err)
	}
	if !s.WorkingHours.Start.IsBefore(s.WorkingHours.End) {
		return fmt.Errorf("%w: working hours start %s must be before end %s",
			ErrInvalidSchedule, s.WorkingHours.Start, s.WorkingHours.End)
	}

	if s.TimeZone != "" {
		if _, err := time.LoadLocation(s.TimeZone); err != nil {
			return fmt.Errorf("%w: unknown time zone %q", ErrInvalidSchedule, s.TimeZone)
		}
	}

	return nil
}

// IsWorkingDay reports whether slots are offered on the given weekday
func (s WorkingSchedule) IsWorkingDay(d time.Weekday) bool {
	for _, wd := range s.WorkingDays {
		if wd == d {
			return true
		}
	}
	return false
}

// SessionDuration returns the session length as a time.Duration
func (s WorkingSchedule) SessionDuration() time.Duration {
	return time.Duration(s.SessionDurationMinutes) * time.Minute
}

// Location resolves TimeZone, falling back when it is empty or unknown
func (s WorkingSchedule) Location(fallback *time.Location) *time.Location {
	if s.TimeZone != "" {
		if loc, err := time.LoadLocation(s.TimeZone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}
