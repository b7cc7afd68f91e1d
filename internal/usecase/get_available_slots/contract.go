package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// TherapistRepository интерфейс репозитория профилей
type TherapistRepository interface {
	FindByBookingLink(ctx context.Context, bookingLink string) (*domain.TherapistProfile, error)
}

// BookingRepository интерфейс репозитория заявок
type BookingRepository interface {
	ListByLink(ctx context.Context, bookingLink string) ([]*domain.BookingRecord, error)
}

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	List(ctx context.Context, therapistID string) ([]*domain.Appointment, error)
}

// Metrics интерфейс метрик
type Metrics interface {
	ObserveSlots(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
