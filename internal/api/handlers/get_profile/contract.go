package get_profile

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
)

type TherapistService interface {
	Ensure(ctx context.Context, req *models.EnsureProfileRequest) (*models.ProfileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
