package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/meetingservice"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// Options параметры серий, создаваемых практикующим
type Options struct {
	DefaultWeeks int
	MaxWeeks     int
}

// Service календарь практикующего: встречи, которые он ведет сам
type Service struct {
	appointmentRepo AppointmentRepository
	therapistRepo   TherapistRepository
	meetingClient   MeetingClient
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса встреч.
// meetingClient может быть nil.
func NewService(
	appointmentRepo AppointmentRepository,
	therapistRepo TherapistRepository,
	meetingClient MeetingClient,
	opts Options,
	logger Logger,
) *Service {
	if opts.DefaultWeeks <= 0 {
		opts.DefaultWeeks = domain.DefaultOccurrences
	}
	if opts.MaxWeeks < opts.DefaultWeeks {
		opts.MaxWeeks = opts.DefaultWeeks
	}
	return &Service{
		appointmentRepo: appointmentRepo,
		therapistRepo:   therapistRepo,
		meetingClient:   meetingClient,
		opts:            opts,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create создает разовую встречу или еженедельную серию
func (s *Service) Create(ctx context.Context, userID string, req *models.CreateAppointmentRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("Create: creating %s appointment for therapist=%s", req.Type, userID)

	// 1. Валидация
	base, kind, err := validateCreate(req, s.opts)
	if err != nil {
		s.logger.Warn("Create: validation failed for therapist=%s: %v", userID, err)
		return nil, err
	}

	// 2. Профиль практикующего
	therapist, err := s.getTherapist(ctx, userID, "Create")
	if err != nil {
		return nil, err
	}

	// 3. Интервалы серии
	occurrences := 1
	var seriesID *string
	if kind == domain.KindRecurring {
		occurrences = req.Weeks
		if occurrences == 0 {
			occurrences = s.opts.DefaultWeeks
		}
		seriesID = ptr.Ptr(uuid.NewString())
	}
	ranges, err := scheduling.Expand(base, occurrences)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Собираем встречи
	now := s.timeProvider.Now()
	items := make([]*domain.Appointment, 0, len(ranges))
	for _, r := range ranges {
		a := &domain.Appointment{
			ID:           uuid.NewString(),
			TherapistID:  therapist.UserID,
			SeriesID:     seriesID,
			PatientName:  strings.TrimSpace(req.PatientName),
			PatientEmail: strings.TrimSpace(req.PatientEmail),
			Range:        r,
			Kind:         kind,
			Status:       domain.AppointmentScheduled,
			Notes:        req.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.attachMeeting(ctx, therapist, a)
		items = append(items, a)
	}

	// 5. Сохраняем
	created, err := s.persist(ctx, therapist.UserID, items)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: created %d appointment(s) for therapist=%s", len(created), userID)
	return models.FromDomainAppointmentList(created), nil
}

// List все встречи практикующего по возрастанию начала
func (s *Service) List(ctx context.Context, userID string) (*models.AppointmentListResponse, error) {
	items, err := s.appointmentRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error("List: repository error for therapist=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments for therapist=%s", len(items), userID)
	return models.FromDomainAppointmentList(items), nil
}

// ListByRange встречи, начало которых лежит в [from, to]
func (s *Service) ListByRange(ctx context.Context, userID string, from, to time.Time) (*models.AppointmentListResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end is before start", ErrInvalidInput)
	}

	items, err := s.appointmentRepo.ListByRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("ListByRange: repository error for therapist=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: ListByRange - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByRange: fetched %d appointments for therapist=%s, period=%s to %s",
		len(items), userID, from.Format(time.RFC3339), to.Format(time.RFC3339))
	return models.FromDomainAppointmentList(items), nil
}

// GetByID одна встреча
func (s *Service) GetByID(ctx context.Context, userID, id string) (*models.AppointmentResponse, error) {
	a, err := s.get(ctx, userID, id, "GetByID")
	if err != nil {
		return nil, err
	}
	res := models.FromDomainAppointment(a)
	return &res, nil
}

// Update частично обновляет встречу, переходы статуса проверяются
func (s *Service) Update(ctx context.Context, userID, id string, req *models.UpdateAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Update: updating appointment=%s for therapist=%s", id, userID)

	a, err := s.get(ctx, userID, id, "Update")
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	if err := s.apply(a, req, now); err != nil {
		s.logger.Warn("Update: appointment=%s rejected: %v", id, err)
		return nil, err
	}
	a.UpdatedAt = now

	if err := s.appointmentRepo.Update(ctx, a); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Update: repository error for appointment=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: appointment=%s updated, status=%s", id, a.Status)
	res := models.FromDomainAppointment(a)
	return &res, nil
}

// Delete удаляет встречу
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, userID, id, "Delete"); err != nil {
		return err
	}

	if err := s.appointmentRepo.Delete(ctx, userID, id); err != nil {
		s.logger.Error("Delete: repository error for appointment=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: appointment=%s deleted for therapist=%s", id, userID)
	return nil
}

// CancelSeries отменяет все активные встречи серии
func (s *Service) CancelSeries(ctx context.Context, userID, seriesID string) (*models.CancelSeriesResponse, error) {
	s.logger.Info("CancelSeries: cancelling series=%s for therapist=%s", seriesID, userID)

	if strings.TrimSpace(seriesID) == "" || strings.Contains(seriesID, "/") {
		return nil, fmt.Errorf("%w: seriesId is required", ErrInvalidInput)
	}

	items, err := s.appointmentRepo.ListBySeries(ctx, userID, seriesID)
	if err != nil {
		s.logger.Error("CancelSeries: repository error for series=%s: %v", seriesID, err)
		return nil, fmt.Errorf("%w: CancelSeries - repository error: %v", ErrInternal, err)
	}
	if len(items) == 0 {
		s.logger.Warn("CancelSeries: series=%s not found for therapist=%s", seriesID, userID)
		return nil, ErrSeriesNotFound
	}

	now := s.timeProvider.Now()
	res := &models.CancelSeriesResponse{SeriesID: seriesID, CancelledIDs: make([]string, 0, len(items))}
	for _, a := range items {
		if !a.IsActive() {
			continue
		}
		if err := a.TransitionTo(domain.AppointmentCancelled, now); err != nil {
			s.logger.Warn("CancelSeries: skip appointment=%s: %v", a.ID, err)
			continue
		}
		if err := s.appointmentRepo.UpdateStatus(ctx, userID, a.ID, domain.AppointmentCancelled, now); err != nil {
			s.logger.Error("CancelSeries: failed to cancel appointment=%s, cancelled so far=[%s]: %v",
				a.ID, strings.Join(res.CancelledIDs, ","), err)
			return nil, fmt.Errorf("%w: CancelSeries - repository error: %v", ErrInternal, err)
		}
		res.CancelledIDs = append(res.CancelledIDs, a.ID)
	}

	s.logger.Info("CancelSeries: cancelled %d of %d appointments in series=%s", len(res.CancelledIDs), len(items), seriesID)
	return res, nil
}

// Stats счетчики дашборда в часовом поясе практикующего
func (s *Service) Stats(ctx context.Context, userID string) (*models.StatsResponse, error) {
	therapist, err := s.getTherapist(ctx, userID, "Stats")
	if err != nil {
		return nil, err
	}

	items, err := s.appointmentRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error("Stats: repository error for therapist=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: Stats - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	now = now.In(therapist.Schedule.Location(now.Location()))
	return models.FromDomainStats(scheduling.Stats(items, now)), nil
}

// Watch подписывает на изменения календаря. onChange получает полный отсортированный список.
func (s *Service) Watch(
	ctx context.Context,
	userID string,
	onChange func(*models.AppointmentListResponse),
	onError func(error),
) (func(), error) {
	unsubscribe, err := s.appointmentRepo.Watch(ctx, userID,
		func(items []*domain.Appointment) {
			onChange(models.FromDomainAppointmentList(items))
		},
		func(err error) {
			s.logger.Warn("Watch: therapist=%s: %v", userID, err)
			if onError != nil {
				onError(err)
			}
		},
	)
	if err != nil {
		s.logger.Error("Watch: failed to subscribe for therapist=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: Watch - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Watch: subscribed to appointments of therapist=%s", userID)
	return unsubscribe, nil
}

func (s *Service) get(ctx context.Context, userID, id, op string) (*domain.Appointment, error) {
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("%w: appointmentId is required", ErrInvalidInput)
	}

	a, err := s.appointmentRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment=%s not found for therapist=%s", op, id, userID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return a, nil
}

func (s *Service) getTherapist(ctx context.Context, userID, op string) (*domain.TherapistProfile, error) {
	therapist, err := s.therapistRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			s.logger.Warn("%s: therapist user=%s not found", op, userID)
			return nil, ErrTherapistNotFound
		}
		s.logger.Error("%s: failed to get therapist user=%s: %v", op, userID, err)
		return nil, fmt.Errorf("%w: %s - failed to get therapist: %v", ErrInternal, op, err)
	}
	return therapist, nil
}

// apply переносит изменения запроса на встречу
func (s *Service) apply(a *domain.Appointment, req *models.UpdateAppointmentRequest, now time.Time) error {
	name, email := a.PatientName, a.PatientEmail
	if req.PatientName != nil {
		name = strings.TrimSpace(*req.PatientName)
	}
	if req.PatientEmail != nil {
		email = strings.TrimSpace(*req.PatientEmail)
	}
	if err := validatePatient(name, email); err != nil {
		return err
	}
	if err := validateNotes(req.Notes); err != nil {
		return err
	}

	if req.StartTime != nil || req.EndTime != nil {
		start, end := a.Range.Start(), a.Range.End()
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		r, err := domain.NewTimeRange(start, end)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		a.Range = r
	}

	if req.Status != nil {
		status, err := domain.ParseAppointmentStatus(*req.Status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := a.TransitionTo(status, now); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
	}

	a.PatientName, a.PatientEmail = name, email
	if req.Notes != nil {
		a.Notes = ptr.NonEmpty(strings.TrimSpace(*req.Notes))
	}
	return nil
}

// persist серия пишется одной атомарной записью, если хранилище это умеет
func (s *Service) persist(ctx context.Context, therapistID string, items []*domain.Appointment) ([]*domain.Appointment, error) {
	if len(items) > 1 && s.appointmentRepo.SupportsBatch() {
		created, err := s.appointmentRepo.CreateAll(ctx, therapistID, items)
		if err != nil {
			s.logger.Error("Create: batch write of %d appointments failed: %v", len(items), err)
			return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		return created, nil
	}

	created := make([]*domain.Appointment, 0, len(items))
	for _, a := range items {
		saved, err := s.appointmentRepo.Create(ctx, a)
		if err != nil {
			ids := make([]string, 0, len(created))
			for _, c := range created {
				ids = append(ids, c.ID)
			}
			s.logger.Error("Create: failed to write appointment %d of %d, persisted=[%s]: %v",
				len(created)+1, len(items), strings.Join(ids, ","), err)
			return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		created = append(created, saved)
	}
	return created, nil
}

func (s *Service) attachMeeting(ctx context.Context, therapist *domain.TherapistProfile, a *domain.Appointment) {
	if s.meetingClient == nil || !therapist.CalendarIntegrated {
		return
	}

	meeting, err := s.meetingClient.CreateMeetingWithGracefulDegradation(ctx, meetingservice.MeetingRequest{
		TherapistID:   therapist.UserID,
		Title:         a.PatientName,
		AttendeeEmail: a.PatientEmail,
		StartTime:     a.Range.Start().UTC().Format(domain.WireTimeFormat),
		EndTime:       a.Range.End().UTC().Format(domain.WireTimeFormat),
	})
	if err != nil {
		s.logger.Warn("Create: appointment without meeting link: %v", err)
		return
	}
	a.ExternalMeetingLink = ptr.NonEmpty(meeting.MeetingLink)
	a.ExternalCalendarID = ptr.NonEmpty(meeting.CalendarEventID)
}
