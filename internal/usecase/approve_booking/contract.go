package approve_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/meetingservice"
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

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	List(ctx context.Context, therapistID string) ([]*domain.Appointment, error)
}

// MeetingClient интерфейс клиента календарной интеграции
type MeetingClient interface {
	CreateMeetingWithGracefulDegradation(ctx context.Context, req meetingservice.MeetingRequest) (*meetingservice.Meeting, error)
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
