package regenerate_booking_link

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
)

type TherapistService interface {
	RegenerateBookingLink(ctx context.Context, userID string) (*models.BookingLinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
