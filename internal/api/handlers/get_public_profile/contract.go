package get_public_profile

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
)

type TherapistService interface {
	GetPublicProfile(ctx context.Context, bookingLink string, forced *domain.BookingKind) (*models.PublicProfileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
