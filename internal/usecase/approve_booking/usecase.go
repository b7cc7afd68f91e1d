package approve_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/meetingservice"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// UseCase use case подтверждения заявки практикующим
type UseCase struct {
	therapistRepo   TherapistRepository
	bookingRepo     BookingRepository
	appointmentRepo AppointmentRepository
	meetingClient   MeetingClient
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// meetingClient может быть nil, если календарная интеграция выключена.
func NewUseCase(
	therapistRepo TherapistRepository,
	bookingRepo BookingRepository,
	appointmentRepo AppointmentRepository,
	meetingClient MeetingClient,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.DefaultOccurrences <= 0 {
		opts.DefaultOccurrences = domain.DefaultOccurrences
	}
	return &UseCase{
		therapistRepo:   therapistRepo,
		bookingRepo:     bookingRepo,
		appointmentRepo: appointmentRepo,
		meetingClient:   meetingClient,
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

// promotion заявка и интервалы встреч, которые из нее получаются
type promotion struct {
	booking *domain.BookingRecord
	ranges  []domain.TimeRange
}

// Execute выполняет use case подтверждения
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ApproveBooking: user=%s, booking=%s", req.UserID, req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ApproveBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем профиль практикующего
	therapist, err := uc.therapistRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			uc.logger.Warn("ApproveBooking: therapist user=%s not found", req.UserID)
			return nil, ErrTherapistNotFound
		}
		uc.logger.Error("ApproveBooking: failed to get therapist user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get therapist: %v", ErrInternal, err)
	}
	if therapist.BookingLink == "" {
		uc.logger.Warn("ApproveBooking: therapist user=%s has no booking link", req.UserID)
		return nil, ErrAccessDenied
	}

	// 3. Получаем заявку по ссылке практикующего
	booking, err := uc.bookingRepo.GetByID(ctx, therapist.BookingLink, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ApproveBooking: booking=%s not found for link=%s", req.BookingID, therapist.BookingLink)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ApproveBooking: failed to get booking=%s: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 4. Подтвердить можно только ожидающую заявку
	if !booking.Status.CanTransitionTo(domain.BookingApproved) {
		uc.logger.Warn("ApproveBooking: booking=%s has status %s", booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidTransition, booking.Status)
	}

	// 5. Определяем, какие заявки и интервалы продвигаются
	promotions, err := uc.plan(ctx, therapist.BookingLink, booking)
	if err != nil {
		return nil, err
	}

	// 6. Перепроверка пересечений (по умолчанию выключена)
	if uc.opts.RecheckOnApprove {
		if err := uc.recheck(ctx, therapist.UserID, promotions); err != nil {
			return nil, err
		}
	}

	// 7. Захватываем заявки: Pending -> Approved условной записью.
	// Встречи создаются только для выигранных заявок.
	now := uc.timeProvider.Now()
	claimed, err := uc.claim(ctx, therapist.BookingLink, booking.ID, promotions, now)
	if err != nil {
		return nil, err
	}

	// 8. Создаем встречи
	created, touched, err := uc.createAppointments(ctx, therapist, claimed, now)
	if err != nil {
		// заявки без единой созданной встречи возвращаем в ожидание
		uc.unclaim(ctx, therapist.BookingLink, claimed[touched:])
		return nil, err
	}

	approvedIDs := make([]string, 0, len(claimed))
	for _, p := range claimed {
		approvedIDs = append(approvedIDs, p.booking.ID)
	}

	uc.metrics.Decision(string(domain.BookingApproved))
	uc.logger.Info("ApproveBooking: booking=%s approved, %d booking(s) promoted to %d appointment(s)",
		booking.ID, len(approvedIDs), len(created))

	return toResponse(approvedIDs, created), nil
}

// plan разовая заявка дает одну встречу. Заявка серии продвигает все ожидающие
// заявки той же серии один к одному. Заявка серии без seriesId разворачивается заново.
func (uc *UseCase) plan(ctx context.Context, bookingLink string, booking *domain.BookingRecord) ([]promotion, error) {
	if booking.Kind != domain.KindRecurring {
		return []promotion{{booking: booking, ranges: []domain.TimeRange{booking.Range}}}, nil
	}

	if !booking.InSeries() {
		ranges, err := scheduling.Expand(booking.Range, uc.opts.DefaultOccurrences)
		if err != nil {
			uc.logger.Error("ApproveBooking: failed to expand booking=%s: %v", booking.ID, err)
			return nil, fmt.Errorf("%w: failed to expand series: %v", ErrInternal, err)
		}
		uc.logger.Info("ApproveBooking: booking=%s has no series id, expanding %d occurrences", booking.ID, len(ranges))
		return []promotion{{booking: booking, ranges: ranges}}, nil
	}

	series, err := uc.bookingRepo.ListBySeries(ctx, bookingLink, *booking.SeriesID)
	if err != nil {
		uc.logger.Error("ApproveBooking: failed to list series=%s: %v", *booking.SeriesID, err)
		return nil, fmt.Errorf("%w: failed to list series: %v", ErrInternal, err)
	}

	promotions := make([]promotion, 0, len(series))
	for _, b := range series {
		if b.IsPending() {
			promotions = append(promotions, promotion{booking: b, ranges: []domain.TimeRange{b.Range}})
		}
	}
	uc.logger.Info("ApproveBooking: series=%s has %d pending of %d occurrences", *booking.SeriesID, len(promotions), len(series))

	return promotions, nil
}

// claim переводит заявки в Approved. Запрошенная заявка захватывается первой:
// если ее уже подтвердили или отклонили, ничего не меняется. Прочие заявки серии,
// которые успел захватить конкурентный запрос, пропускаются.
func (uc *UseCase) claim(
	ctx context.Context,
	bookingLink, requestedID string,
	promotions []promotion,
	now time.Time,
) ([]promotion, error) {
	ordered := make([]promotion, 0, len(promotions))
	for _, p := range promotions {
		if p.booking.ID == requestedID {
			ordered = append([]promotion{p}, ordered...)
			continue
		}
		ordered = append(ordered, p)
	}
	if len(ordered) == 0 || ordered[0].booking.ID != requestedID {
		// серию перечитали после того, как заявку уже обработали
		uc.logger.Warn("ApproveBooking: booking=%s is no longer pending in its series", requestedID)
		return nil, fmt.Errorf("%w: booking is no longer pending", ErrInvalidTransition)
	}

	claimed := make([]promotion, 0, len(ordered))
	for _, p := range ordered {
		err := uc.bookingRepo.TransitionStatus(ctx, bookingLink, p.booking.ID, domain.BookingPending, domain.BookingApproved, now)
		if err == nil {
			if err := p.booking.TransitionTo(domain.BookingApproved, now); err != nil {
				uc.logger.Warn("ApproveBooking: booking=%s: %v", p.booking.ID, err)
			}
			claimed = append(claimed, p)
			continue
		}

		lost := errors.Is(err, bookingRepo.ErrStatusChanged) || errors.Is(err, bookingRepo.ErrBookingNotFound)
		switch {
		case lost && p.booking.ID == requestedID:
			uc.logger.Warn("ApproveBooking: booking=%s is no longer pending", p.booking.ID)
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, fmt.Errorf("%w: booking is no longer pending", ErrInvalidTransition)
		case lost:
			uc.logger.Warn("ApproveBooking: skip booking=%s, decided concurrently", p.booking.ID)
		default:
			uc.logger.Error("ApproveBooking: failed to mark booking=%s approved: %v", p.booking.ID, err)
			uc.unclaim(ctx, bookingLink, claimed)
			return nil, fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
		}
	}

	return claimed, nil
}

// unclaim возвращает захваченные заявки в Pending, ошибки только логируются
func (uc *UseCase) unclaim(ctx context.Context, bookingLink string, promotions []promotion) {
	for _, p := range promotions {
		now := uc.timeProvider.Now()
		err := uc.bookingRepo.TransitionStatus(ctx, bookingLink, p.booking.ID, domain.BookingApproved, domain.BookingPending, now)
		if err != nil {
			uc.logger.Error("ApproveBooking: booking=%s stays approved without appointments: %v", p.booking.ID, err)
			continue
		}
		p.booking.Status = domain.BookingPending
		p.booking.UpdatedAt = now
	}
}

func (uc *UseCase) recheck(ctx context.Context, therapistID string, promotions []promotion) error {
	appointments, err := uc.appointmentRepo.List(ctx, therapistID)
	if err != nil {
		uc.logger.Error("ApproveBooking: failed to list appointments for therapist=%s: %v", therapistID, err)
		return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	busy := scheduling.BusyAppointments(appointments)
	for _, p := range promotions {
		if conflict, found := scheduling.FirstConflict(p.ranges, busy); found {
			uc.logger.Warn("ApproveBooking: booking=%s range %s conflicts with a scheduled appointment", p.booking.ID, conflict)
			return fmt.Errorf("%w: %s", ErrSlotConflict, conflict)
		}
	}
	return nil
}

// createAppointments возвращает созданные встречи и число заявок, по которым
// создана хотя бы одна встреча
func (uc *UseCase) createAppointments(
	ctx context.Context,
	therapist *domain.TherapistProfile,
	promotions []promotion,
	now time.Time,
) ([]*domain.Appointment, int, error) {
	created := make([]*domain.Appointment, 0, len(promotions))
	touched := 0

	for i, p := range promotions {
		for _, r := range p.ranges {
			a := domain.AppointmentFromBooking(p.booking, therapist.UserID, r, now)
			a.ID = uuid.NewString()
			uc.attachMeeting(ctx, therapist, a)

			saved, err := uc.appointmentRepo.Create(ctx, a)
			if err != nil {
				ids := make([]string, 0, len(created))
				for _, c := range created {
					ids = append(ids, c.ID)
				}
				uc.logger.Error("ApproveBooking: failed to create appointment for booking=%s, created so far=[%s]: %v",
					p.booking.ID, strings.Join(ids, ","), err)
				return created, touched, fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
			}
			created = append(created, saved)
			touched = i + 1
		}
	}

	return created, touched, nil
}

// attachMeeting ссылка на видеозвонок, если у практикующего подключен календарь.
// Недоступность интеграции не мешает подтверждению.
func (uc *UseCase) attachMeeting(ctx context.Context, therapist *domain.TherapistProfile, a *domain.Appointment) {
	if uc.meetingClient == nil || !therapist.CalendarIntegrated {
		return
	}

	meeting, err := uc.meetingClient.CreateMeetingWithGracefulDegradation(ctx, meetingservice.MeetingRequest{
		TherapistID:   therapist.UserID,
		Title:         a.PatientName,
		AttendeeEmail: a.PatientEmail,
		StartTime:     a.Range.Start().UTC().Format(domain.WireTimeFormat),
		EndTime:       a.Range.End().UTC().Format(domain.WireTimeFormat),
	})
	if err != nil {
		uc.logger.Warn("ApproveBooking: appointment without meeting link: %v", err)
		return
	}

	a.ExternalMeetingLink = ptr.NonEmpty(meeting.MeetingLink)
	a.ExternalCalendarID = ptr.NonEmpty(meeting.CalendarEventID)
}

func toResponse(approvedIDs []string, created []*domain.Appointment) *Response {
	resp := &Response{
		ApprovedBookingIDs: approvedIDs,
		Appointments:       make([]Appointment, 0, len(created)),
	}
	for _, a := range created {
		resp.Appointments = append(resp.Appointments, Appointment{
			ID:          a.ID,
			SeriesID:    a.SeriesID,
			StartTime:   a.Range.Start(),
			EndTime:     a.Range.End(),
			Type:        string(a.Kind),
			Status:      string(a.Status),
			MeetingLink: a.ExternalMeetingLink,
		})
	}
	return resp
}
