package domain

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [start, end) with end strictly after start.
// The zero value is not a valid range; use NewTimeRange.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange validates and builds a range
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, fmt.Errorf("%w: start and end are required", ErrInvalidTimeRange)
	}
	if !end.After(start) {
		return TimeRange{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidTimeRange, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeRange{start: start, end: end}, nil
}

// NewTimeRangeFromDuration builds [start, start+d)
func NewTimeRangeFromDuration(start time.Time, d time.Duration) (TimeRange, error) {
	return NewTimeRange(start, start.Add(d))
}

// Start returns the inclusive lower bound
func (r TimeRange) Start() time.Time { return r.start }

// End returns the exclusive upper bound
func (r TimeRange) End() time.Time { return r.end }

// IsZero reports whether the range was never constructed
func (r TimeRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Duration returns end - start
func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

// Overlaps reports whether two half-open ranges share any instant.
// Ranges that only touch at a boundary do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// Within reports whether r lies entirely inside outer
func (r TimeRange) Within(outer TimeRange) bool {
	return !r.start.Before(outer.start) && !r.end.After(outer.end)
}

// ShiftDays moves the range by whole calendar days in its own location, keeping its duration
func (r TimeRange) ShiftDays(days int) TimeRange {
	start := r.start.AddDate(0, 0, days)
	return TimeRange{start: start, end: start.Add(r.Duration())}
}

// In converts both bounds to loc
func (r TimeRange) In(loc *time.Location) TimeRange {
	return TimeRange{start: r.start.In(loc), end: r.end.In(loc)}
}

// Equal compares instants, ignoring locations
func (r TimeRange) Equal(other TimeRange) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.start.Format(time.RFC3339), r.end.Format(time.RFC3339))
}
