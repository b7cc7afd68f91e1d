package reject_booking

import (
	"context"

	rejectBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reject_booking"
)

type RejectBookingUseCase interface {
	Execute(ctx context.Context, req *rejectBooking.Request) (*rejectBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
