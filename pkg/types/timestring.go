package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

var (
	// ErrInvalidTimeString возвращается при некорректном формате HH:MM
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time string overflows the day")
)

// TimeString время суток в формате "HH:MM" (без даты и часового пояса)
type TimeString struct {
	minutes int
	valid   bool
}

// NewTimeString берет часы и минуты из time.Time
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// NewTimeStringFromString парсит строку "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	ts := TimeString{minutes: hours*60 + minutes, valid: true}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	return ts, nil
}

// MustTimeString как NewTimeStringFromString, но паникует (для констант и тестов)
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return !t.valid
}

// Validate проверяет, что время задано и лежит в пределах суток
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	if t.minutes < 0 || t.minutes >= minutesPerDay {
		return ErrTimeOverflow
	}
	return nil
}

// Hour часы
func (t TimeString) Hour() int {
	return t.minutes / 60
}

// Minute минуты
func (t TimeString) Minute() int {
	return t.minutes % 60
}

// MinutesOfDay количество минут от полуночи
func (t TimeString) MinutesOfDay() int {
	return t.minutes
}

// AddMinutes сдвигает время, не выходя за пределы суток
func (t TimeString) AddMinutes(m int) (TimeString, error) {
	res := t.minutes + m
	if res < 0 || res >= minutesPerDay {
		return TimeString{}, ErrTimeOverflow
	}
	return TimeString{minutes: res, valid: true}, nil
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// On материализует время суток на дату в указанной локации
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
}

func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText реализует encoding.TextMarshaler
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (t *TimeString) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = TimeString{}
		return nil
	}
	parsed, err := NewTimeStringFromString(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
