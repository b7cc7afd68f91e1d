package reject_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// TherapistRepository интерфейс репозитория профилей
type TherapistRepository interface {
	Get(ctx context.Context, userID string) (*domain.TherapistProfile, error)
}

// BookingRepository интерфейс репозитория заявок
type BookingRepository interface {
	GetByID(ctx context.Context, bookingLink, id string) (*domain.BookingRecord, error)
	ListBySeries(ctx context.Context, bookingLink, seriesID string) ([]*domain.BookingRecord, error)
	TransitionStatus(ctx context.Context, bookingLink, id string, from, to domain.BookingStatus, updatedAt time.Time) error
}

// Reserver интерфейс резервирования интервала за заявкой
type Reserver interface {
	Release(ctx context.Context, bookingLink string, r domain.TimeRange, holder string) error
}

// Metrics интерфейс метрик
type Metrics interface {
	Decision(decision string)
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
