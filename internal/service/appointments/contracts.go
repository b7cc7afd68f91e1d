package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/meetingservice"
)

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	CreateAll(ctx context.Context, therapistID string, items []*domain.Appointment) ([]*domain.Appointment, error)
	SupportsBatch() bool
	GetByID(ctx context.Context, therapistID, id string) (*domain.Appointment, error)
	List(ctx context.Context, therapistID string) ([]*domain.Appointment, error)
	ListByRange(ctx context.Context, therapistID string, from, to time.Time) ([]*domain.Appointment, error)
	ListBySeries(ctx context.Context, therapistID, seriesID string) ([]*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
	UpdateStatus(ctx context.Context, therapistID, id string, status domain.AppointmentStatus, updatedAt time.Time) error
	Delete(ctx context.Context, therapistID, id string) error
	Watch(ctx context.Context, therapistID string, onChange func([]*domain.Appointment), onError func(error)) (func(), error)
}

// TherapistRepository интерфейс репозитория профилей
type TherapistRepository interface {
	Get(ctx context.Context, userID string) (*domain.TherapistProfile, error)
}

// MeetingClient интерфейс клиента календарной интеграции
type MeetingClient interface {
	CreateMeetingWithGracefulDegradation(ctx context.Context, req meetingservice.MeetingRequest) (*meetingservice.Meeting, error)
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
