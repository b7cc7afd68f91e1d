package realtime

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

// AppointmentWatcher подписка на календарь практикующего
type AppointmentWatcher interface {
	Watch(
		ctx context.Context,
		userID string,
		onChange func(*models.AppointmentListResponse),
		onError func(error),
	) (func(), error)
}

type Metrics interface {
	RealtimeClientsDelta(delta int)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
