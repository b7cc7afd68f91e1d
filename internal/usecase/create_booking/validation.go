package create_booking

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует данные посетителя до любой записи в хранилище
func validateRequest(req *Request, opts Options) (domain.TimeRange, domain.BookingKind, error) {
	if strings.TrimSpace(req.BookingLink) == "" || strings.Contains(req.BookingLink, "/") {
		return domain.TimeRange{}, "", fmt.Errorf("%w: bookingLink is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.PatientName) == "" {
		return domain.TimeRange{}, "", fmt.Errorf("%w: patientName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.PatientName) > domain.MaxPatientNameLength {
		return domain.TimeRange{}, "", fmt.Errorf("%w: patientName is too long", ErrInvalidInput)
	}

	if strings.TrimSpace(req.PatientEmail) == "" {
		return domain.TimeRange{}, "", fmt.Errorf("%w: patientEmail is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(req.PatientEmail); err != nil {
		return domain.TimeRange{}, "", fmt.Errorf("%w: patientEmail is not a valid address", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return domain.TimeRange{}, "", fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	r, err := domain.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return domain.TimeRange{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	kind, err := domain.ParseBookingKind(req.Type)
	if err != nil {
		return domain.TimeRange{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Occurrences < 0 {
		return domain.TimeRange{}, "", fmt.Errorf("%w: occurrences must not be negative", ErrInvalidInput)
	}
	if opts.MaxOccurrences > 0 && req.Occurrences > opts.MaxOccurrences {
		return domain.TimeRange{}, "", fmt.Errorf("%w: occurrences must be between 1 and %d", ErrInvalidInput, opts.MaxOccurrences)
	}

	return r, kind, nil
}

// occurrencesFor количество встреч серии с учетом значения по умолчанию
func occurrencesFor(kind domain.BookingKind, requested int, opts Options) int {
	if kind != domain.KindRecurring {
		return 1
	}
	if requested > 0 {
		return requested
	}
	if opts.DefaultOccurrences > 0 {
		return opts.DefaultOccurrences
	}
	return domain.DefaultOccurrences
}

// trimOptional пустая строка считается отсутствующим значением
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
