package therapists

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// TherapistRepository интерфейс репозитория профилей
type TherapistRepository interface {
	Get(ctx context.Context, userID string) (*domain.TherapistProfile, error)
	Put(ctx context.Context, p *domain.TherapistProfile) error
	Update(ctx context.Context, p *domain.TherapistProfile) error
	UpdateBookingLink(ctx context.Context, userID, bookingLink string, updatedAt time.Time) error
	FindByBookingLink(ctx context.Context, bookingLink string) (*domain.TherapistProfile, error)
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

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }
