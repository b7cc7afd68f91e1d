package handlers

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// FormatTime момент времени в ответе: ISO-8601 в UTC с миллисекундами
func FormatTime(t time.Time) string {
	return t.UTC().Format(domain.WireTimeFormat)
}

// ParseTime принимает любой RFC 3339 момент, с дробными секундами или без
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
