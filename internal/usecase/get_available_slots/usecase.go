package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
)

// UseCase use case для получения слотов на публичной странице записи
type UseCase struct {
	therapistRepo   TherapistRepository
	bookingRepo     BookingRepository
	appointmentRepo AppointmentRepository
	metrics         Metrics
	horizonDays     int
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	therapistRepo TherapistRepository,
	bookingRepo BookingRepository,
	appointmentRepo AppointmentRepository,
	metrics Metrics,
	horizonDays int,
	logger Logger,
) *UseCase {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultHorizonDays
	}
	return &UseCase{
		therapistRepo:   therapistRepo,
		bookingRepo:     bookingRepo,
		appointmentRepo: appointmentRepo,
		metrics:         metrics,
		horizonDays:     horizonDays,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: link=%s, type=%s", req.BookingLink, req.Type)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Находим практикующего по ссылке
	therapist, err := uc.therapistRepo.FindByBookingLink(ctx, req.BookingLink)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("GetAvailableSlots: link=%s not found", req.BookingLink)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to find therapist by link=%s: %v", req.BookingLink, err)
		return nil, fmt.Errorf("%w: failed to find therapist: %v", ErrInternal, err)
	}

	// 3. Генерируем сетку слотов
	now := uc.timeProvider.Now()
	slots := scheduling.GenerateSlots(therapist.Schedule, uc.horizonDays, now)

	// 4. Получаем занятые интервалы
	bookings, err := uc.bookingRepo.ListByLink(ctx, req.BookingLink)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list bookings for link=%s: %v", req.BookingLink, err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}

	appointments, err := uc.appointmentRepo.List(ctx, therapist.UserID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list appointments for therapist=%s: %v", therapist.UserID, err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	// 5. Отмечаем занятые слоты
	slots = scheduling.MarkAvailability(slots, busyRanges(bookings, appointments))
	free := len(domain.SlotsAvailable(slots))
	uc.metrics.ObserveSlots(free)

	uc.logger.Info("GetAvailableSlots: generated %d slots (%d free) for link=%s, horizon=%d",
		len(slots), free, req.BookingLink, uc.horizonDays)

	return &Response{
		TherapistName:          therapist.Name,
		Specialization:         therapist.Specialization,
		SessionDurationMinutes: therapist.Schedule.SessionDurationMinutes,
		TimeZone:               therapist.Schedule.Location(now.Location()).String(),
		ForcedKind:             forcedKind(req.Type),
		Days:                   groupByDate(slots),
	}, nil
}
