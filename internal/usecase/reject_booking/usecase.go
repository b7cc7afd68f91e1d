package reject_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
)

// UseCase use case отклонения заявки практикующим
type UseCase struct {
	therapistRepo TherapistRepository
	bookingRepo   BookingRepository
	reserver      Reserver
	metrics       Metrics
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	therapistRepo TherapistRepository,
	bookingRepo BookingRepository,
	reserver Reserver,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		therapistRepo: therapistRepo,
		bookingRepo:   bookingRepo,
		reserver:      reserver,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute отклоняет заявку. Для заявки серии отклоняются все ожидающие заявки серии.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RejectBooking: user=%s, booking=%s", req.UserID, req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RejectBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем профиль практикующего
	therapist, err := uc.therapistRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("RejectBooking: therapist user=%s not found", req.UserID)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("RejectBooking: failed to get therapist user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get therapist: %v", ErrInternal, err)
	}
	if therapist.BookingLink == "" {
		uc.logger.Warn("RejectBooking: therapist user=%s has no booking link", req.UserID)
		return nil, ErrAccessDenied
	}

	// 3. Получаем заявку
	booking, err := uc.bookingRepo.GetByID(ctx, therapist.BookingLink, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RejectBooking: booking=%s not found for link=%s", req.BookingID, therapist.BookingLink)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RejectBooking: failed to get booking=%s: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !booking.Status.CanTransitionTo(domain.BookingRejected) {
		uc.logger.Warn("RejectBooking: booking=%s has status %s", booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidTransition, booking.Status)
	}

	// 4. Собираем заявки, которые нужно отклонить
	targets := []*domain.BookingRecord{booking}
	if booking.InSeries() {
		series, err := uc.bookingRepo.ListBySeries(ctx, therapist.BookingLink, *booking.SeriesID)
		if err != nil {
			uc.logger.Error("RejectBooking: failed to list series=%s: %v", *booking.SeriesID, err)
			return nil, fmt.Errorf("%w: failed to list series: %v", ErrInternal, err)
		}
		// запрошенная заявка отклоняется первой
		targets = targets[:0]
		var requested *domain.BookingRecord
		for _, b := range series {
			switch {
			case !b.IsPending():
			case b.ID == booking.ID:
				requested = b
			default:
				targets = append(targets, b)
			}
		}
		if requested == nil {
			uc.logger.Warn("RejectBooking: booking=%s is no longer pending in its series", booking.ID)
			return nil, fmt.Errorf("%w: booking is no longer pending", ErrInvalidTransition)
		}
		targets = append([]*domain.BookingRecord{requested}, targets...)
	}

	// 5. Условно сохраняем новый статус и освобождаем интервалы
	now := uc.timeProvider.Now()
	rejected := make([]string, 0, len(targets))
	for _, b := range targets {
		err := uc.bookingRepo.TransitionStatus(ctx, therapist.BookingLink, b.ID, domain.BookingPending, domain.BookingRejected, now)
		if err != nil {
			lost := errors.Is(err, bookingRepo.ErrStatusChanged) || errors.Is(err, bookingRepo.ErrBookingNotFound)
			switch {
			case lost && b.ID == booking.ID:
				uc.logger.Warn("RejectBooking: booking=%s is no longer pending", b.ID)
				return nil, fmt.Errorf("%w: booking is no longer pending", ErrInvalidTransition)
			case lost:
				uc.logger.Warn("RejectBooking: skip booking=%s, decided concurrently", b.ID)
				continue
			default:
				uc.logger.Error("RejectBooking: failed to mark booking=%s rejected, rejected so far=[%s]: %v",
					b.ID, strings.Join(rejected, ","), err)
				return nil, fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
			}
		}
		if err := b.TransitionTo(domain.BookingRejected, now); err != nil {
			uc.logger.Warn("RejectBooking: booking=%s: %v", b.ID, err)
		}
		if err := uc.reserver.Release(ctx, therapist.BookingLink, b.Range, b.ID); err != nil {
			uc.logger.Warn("RejectBooking: failed to release range %s of booking=%s: %v", b.Range, b.ID, err)
		}
		rejected = append(rejected, b.ID)
	}

	uc.metrics.Decision(string(domain.BookingRejected))
	uc.logger.Info("RejectBooking: booking=%s rejected, %d booking(s) affected", booking.ID, len(rejected))

	return &Response{RejectedBookingIDs: rejected}, nil
}
