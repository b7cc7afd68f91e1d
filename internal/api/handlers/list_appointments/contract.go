package list_appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

type AppointmentService interface {
	List(ctx context.Context, userID string) (*models.AppointmentListResponse, error)
	ListByRange(ctx context.Context, userID string, from, to time.Time) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
