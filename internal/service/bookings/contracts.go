package bookings

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория заявок
type BookingRepository interface {
	GetByID(ctx context.Context, bookingLink, id string) (*domain.BookingRecord, error)
	ListByLink(ctx context.Context, bookingLink string) ([]*domain.BookingRecord, error)
	ListPending(ctx context.Context, bookingLink string) ([]*domain.BookingRecord, error)
}

// TherapistRepository интерфейс репозитория профилей
type TherapistRepository interface {
	Get(ctx context.Context, userID string) (*domain.TherapistProfile, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
