package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/reservation"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// UseCase use case для создания заявки с публичной страницы
type UseCase struct {
	therapistRepo   TherapistRepository
	bookingRepo     BookingRepository
	appointmentRepo AppointmentRepository
	reserver        Reserver
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	therapistRepo TherapistRepository,
	bookingRepo BookingRepository,
	appointmentRepo AppointmentRepository,
	reserver Reserver,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		therapistRepo:   therapistRepo,
		bookingRepo:     bookingRepo,
		appointmentRepo: appointmentRepo,
		reserver:        reserver,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания заявки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: link=%s, type=%s, start=%s, occurrences=%d",
		req.BookingLink, req.Type, req.StartTime.Format(domain.WireTimeFormat), req.Occurrences)

	// 1. Валидация входных данных
	base, kind, err := validateRequest(req, uc.opts)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Находим практикующего по ссылке
	therapist, err := uc.therapistRepo.FindByBookingLink(ctx, req.BookingLink)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("CreateBooking: link=%s not found", req.BookingLink)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("CreateBooking: failed to find therapist by link=%s: %v", req.BookingLink, err)
		return nil, fmt.Errorf("%w: failed to find therapist: %v", ErrInternal, err)
	}

	// 3. Разворачиваем серию
	ranges, err := scheduling.Expand(base, occurrencesFor(kind, req.Occurrences, uc.opts))
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to expand series: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Проверка пересечений (по умолчанию выключена, гонку принимаем)
	if uc.opts.RejectConflicts {
		if err := uc.checkConflicts(ctx, req.BookingLink, therapist.UserID, ranges); err != nil {
			return nil, err
		}
	}

	// 5. Готовим записи
	now := uc.timeProvider.Now()
	records := uc.buildRecords(req, kind, ranges, now)

	// 6. Резервируем интервалы
	if err := uc.reserve(ctx, req.BookingLink, records); err != nil {
		return nil, err
	}

	// 7. Сохраняем
	var saved []*domain.BookingRecord
	if uc.opts.AtomicSeries && len(records) > 1 && uc.bookingRepo.SupportsBatch() {
		saved, err = uc.persistAtomic(ctx, req.BookingLink, records)
	} else {
		saved, err = uc.persistEach(ctx, req.BookingLink, records)
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.BookingCreated(string(kind), len(saved))
	uc.logger.Info("CreateBooking: successfully created %d booking(s) for link=%s, series=%s",
		len(saved), req.BookingLink, ptr.Value(saved[0].SeriesID))

	return toResponse(kind, saved), nil
}

func (uc *UseCase) checkConflicts(ctx context.Context, bookingLink, therapistID string, ranges []domain.TimeRange) error {
	bookings, err := uc.bookingRepo.ListByLink(ctx, bookingLink)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list bookings for link=%s: %v", bookingLink, err)
		return fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}
	appointments, err := uc.appointmentRepo.List(ctx, therapistID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list appointments for therapist=%s: %v", therapistID, err)
		return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	busy := append(scheduling.BusyBookings(bookings), scheduling.BusyAppointments(appointments)...)
	if conflict, found := scheduling.FirstConflict(ranges, busy); found {
		uc.logger.Warn("CreateBooking: range %s conflicts for link=%s", conflict, bookingLink)
		return fmt.Errorf("%w: %s", ErrSlotConflict, conflict)
	}
	return nil
}

func (uc *UseCase) buildRecords(req *Request, kind domain.BookingKind, ranges []domain.TimeRange, now time.Time) []*domain.BookingRecord {
	var seriesID *string
	if kind == domain.KindRecurring {
		seriesID = ptr.Ptr(uuid.NewString())
	}

	records := make([]*domain.BookingRecord, 0, len(ranges))
	for _, r := range ranges {
		records = append(records, &domain.BookingRecord{
			ID:           uuid.NewString(),
			BookingLink:  req.BookingLink,
			SeriesID:     seriesID,
			PatientName:  strings.TrimSpace(req.PatientName),
			PatientEmail: strings.TrimSpace(req.PatientEmail),
			PatientPhone: trimOptional(req.PatientPhone),
			Range:        r,
			Kind:         kind,
			Notes:        trimOptional(req.Notes),
			Status:       domain.BookingPending,
			Source:       domain.SourcePublicBooking,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return records
}

// reserve удерживает все интервалы серии или ни одного
func (uc *UseCase) reserve(ctx context.Context, bookingLink string, records []*domain.BookingRecord) error {
	for i, b := range records {
		err := uc.reserver.Reserve(ctx, bookingLink, b.Range, b.ID)
		if err == nil {
			continue
		}

		uc.release(ctx, bookingLink, records[:i])
		if errors.Is(err, reservation.ErrSlotTaken) {
			uc.metrics.ReservationConflictHit()
			uc.logger.Warn("CreateBooking: range %s already reserved for link=%s", b.Range, bookingLink)
			return fmt.Errorf("%w: %s", ErrSlotTaken, b.Range)
		}
		uc.logger.Error("CreateBooking: failed to reserve range %s: %v", b.Range, err)
		return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}
	return nil
}

func (uc *UseCase) release(ctx context.Context, bookingLink string, records []*domain.BookingRecord) {
	for _, b := range records {
		if err := uc.reserver.Release(ctx, bookingLink, b.Range, b.ID); err != nil {
			uc.logger.Warn("CreateBooking: failed to release range %s of booking=%s: %v", b.Range, b.ID, err)
		}
	}
}

func (uc *UseCase) persistAtomic(ctx context.Context, bookingLink string, records []*domain.BookingRecord) ([]*domain.BookingRecord, error) {
	saved, err := uc.bookingRepo.CreateAll(ctx, bookingLink, records)
	if err != nil {
		uc.release(ctx, bookingLink, records)
		uc.logger.Error("CreateBooking: failed to persist series of %d: %v", len(records), err)
		return nil, fmt.Errorf("%w: failed to create bookings: %v", ErrInternal, err)
	}
	return saved, nil
}

// persistEach независимые записи. Уже сохраненные записи при ошибке не откатываются.
func (uc *UseCase) persistEach(ctx context.Context, bookingLink string, records []*domain.BookingRecord) ([]*domain.BookingRecord, error) {
	saved := make([]*domain.BookingRecord, 0, len(records))

	for i, b := range records {
		created, err := uc.bookingRepo.Create(ctx, b)
		if err == nil {
			saved = append(saved, created)
			continue
		}

		uc.release(ctx, bookingLink, records[i:])

		if i == 0 {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		ids := make([]string, 0, len(saved))
		for _, s := range saved {
			ids = append(ids, s.ID)
		}
		partial := &PartialSeriesError{
			SeriesID:     ptr.Value(b.SeriesID),
			PersistedIDs: ids,
			Failed:       i,
			Total:        len(records),
			Cause:        err,
		}
		uc.metrics.PartialSeriesFailure()
		uc.logger.Error("CreateBooking: series=%s persisted partially, persisted=[%s], failed at %d of %d: %v",
			partial.SeriesID, strings.Join(ids, ","), i+1, len(records), err)
		return nil, partial
	}

	return saved, nil
}

func toResponse(kind domain.BookingKind, saved []*domain.BookingRecord) *Response {
	resp := &Response{
		SeriesID: saved[0].SeriesID,
		Type:     string(kind),
		Bookings: make([]Booking, 0, len(saved)),
	}
	for _, b := range saved {
		resp.Bookings = append(resp.Bookings, Booking{
			ID:        b.ID,
			StartTime: b.Range.Start(),
			EndTime:   b.Range.End(),
			Status:    string(b.Status),
			CreatedAt: b.CreatedAt,
		})
	}
	return resp
}
