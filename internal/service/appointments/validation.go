package appointments

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

func validatePatient(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: patientName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxPatientNameLength {
		return fmt.Errorf("%w: patientName is too long", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: patientEmail is not a valid address", ErrInvalidInput)
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}

// validateCreate возвращает интервал первой встречи и тип
func validateCreate(req *models.CreateAppointmentRequest, opts Options) (domain.TimeRange, domain.BookingKind, error) {
	if err := validatePatient(req.PatientName, req.PatientEmail); err != nil {
		return domain.TimeRange{}, "", err
	}
	if err := validateNotes(req.Notes); err != nil {
		return domain.TimeRange{}, "", err
	}

	r, err := domain.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return domain.TimeRange{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	kind, err := domain.ParseBookingKind(req.Type)
	if err != nil {
		return domain.TimeRange{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Weeks < 0 {
		return domain.TimeRange{}, "", fmt.Errorf("%w: weeks must not be negative", ErrInvalidInput)
	}
	if req.Weeks > opts.MaxWeeks {
		return domain.TimeRange{}, "", fmt.Errorf("%w: weeks must be between 1 and %d", ErrInvalidInput, opts.MaxWeeks)
	}

	return r, kind, nil
}
