package therapists

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
)

const (
	defaultDisplayName = "Terapeuta"
	maxLinkAttempts    = 5
)

// Service профили практикующих и публичные ссылки
type Service struct {
	therapistRepo TherapistRepository
	timeProvider  TimeProvider
	newLink       func() string
	logger        Logger
}

// NewService создает новый экземпляр сервиса профилей
func NewService(therapistRepo TherapistRepository, logger Logger) *Service {
	return &Service{
		therapistRepo: therapistRepo,
		timeProvider:  realTimeProvider{},
		newLink:       GenerateBookingLink,
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GenerateBookingLink 12 символов [a-z0-9] из случайного uuid
func GenerateBookingLink() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:domain.BookingLinkLength]
}

// Ensure возвращает профиль, при первом входе создает профиль по умолчанию
func (s *Service) Ensure(ctx context.Context, req *models.EnsureProfileRequest) (*models.ProfileResponse, error) {
	s.logger.Info("Ensure: user=%s", req.UserID)

	if strings.TrimSpace(req.UserID) == "" || strings.Contains(req.UserID, "/") {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	profile, err := s.therapistRepo.Get(ctx, req.UserID)
	if err == nil {
		return models.FromDomainProfile(profile), nil
	}
	if !errors.Is(err, therapistRepo.ErrTherapistNotFound) {
		s.logger.Error("Ensure: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: Ensure - repository error: %v", ErrInternal, err)
	}

	link, err := s.uniqueLink(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = defaultDisplayName
	}
	now := s.timeProvider.Now()
	profile = &domain.TherapistProfile{
		ID:          req.UserID,
		UserID:      req.UserID,
		Name:        name,
		Email:       strings.TrimSpace(req.Email),
		Schedule:    domain.DefaultSchedule(),
		BookingLink: link,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.therapistRepo.Put(ctx, profile); err != nil {
		s.logger.Error("Ensure: failed to create profile for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: Ensure - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Ensure: created default profile for user=%s, link=%s", req.UserID, link)
	return models.FromDomainProfile(profile), nil
}

// Get профиль практикующего
func (s *Service) Get(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	profile, err := s.get(ctx, userID, "Get")
	if err != nil {
		return nil, err
	}
	return models.FromDomainProfile(profile), nil
}

// Update обновляет профиль и расписание
func (s *Service) Update(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	s.logger.Info("Update: updating profile of user=%s", userID)

	profile, err := s.get(ctx, userID, "Update")
	if err != nil {
		return nil, err
	}

	if err := req.ApplyTo(profile); err != nil {
		s.logger.Warn("Update: invalid profile for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(profile.Email); err != nil {
		return nil, fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	profile.UpdatedAt = s.timeProvider.Now()

	if err := s.therapistRepo.Update(ctx, profile); err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			return nil, ErrTherapistNotFound
		}
		s.logger.Error("Update: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: profile of user=%s updated", userID)
	return models.FromDomainProfile(profile), nil
}

// RegenerateBookingLink выдает новую ссылку, старая перестает работать
func (s *Service) RegenerateBookingLink(ctx context.Context, userID string) (*models.BookingLinkResponse, error) {
	profile, err := s.get(ctx, userID, "RegenerateBookingLink")
	if err != nil {
		return nil, err
	}

	link, err := s.uniqueLink(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.therapistRepo.UpdateBookingLink(ctx, profile.UserID, link, s.timeProvider.Now()); err != nil {
		s.logger.Error("RegenerateBookingLink: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: RegenerateBookingLink - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("RegenerateBookingLink: user=%s link %s -> %s", userID, profile.BookingLink, link)
	return &models.BookingLinkResponse{BookingLink: link}, nil
}

// GetPublicProfile карточка практикующего по публичной ссылке
func (s *Service) GetPublicProfile(ctx context.Context, bookingLink string, forced *domain.BookingKind) (*models.PublicProfileResponse, error) {
	profile, err := s.therapistRepo.FindByBookingLink(ctx, bookingLink)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			s.logger.Warn("GetPublicProfile: link=%s not found", bookingLink)
			return nil, ErrTherapistNotFound
		}
		s.logger.Error("GetPublicProfile: repository error for link=%s: %v", bookingLink, err)
		return nil, fmt.Errorf("%w: GetPublicProfile - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainPublicProfile(profile, forced), nil
}

// IsSetup профиль существует и заполнен; ошибки чтения считаются "не настроен"
func (s *Service) IsSetup(ctx context.Context, userID string) bool {
	profile, err := s.therapistRepo.Get(ctx, userID)
	if err != nil {
		return false
	}
	return profile.IsSetup()
}

func (s *Service) get(ctx context.Context, userID, op string) (*domain.TherapistProfile, error) {
	profile, err := s.therapistRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			s.logger.Warn("%s: profile of user=%s not found", op, userID)
			return nil, ErrTherapistNotFound
		}
		s.logger.Error("%s: repository error for user=%s: %v", op, userID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return profile, nil
}

// uniqueLink ссылка, которой еще нет ни у одного профиля
func (s *Service) uniqueLink(ctx context.Context) (string, error) {
	for i := 0; i < maxLinkAttempts; i++ {
		link := s.newLink()
		_, err := s.therapistRepo.FindByBookingLink(ctx, link)
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			return link, nil
		}
		if err != nil {
			s.logger.Error("uniqueLink: repository error: %v", err)
			return "", fmt.Errorf("%w: uniqueLink - repository error: %v", ErrInternal, err)
		}
		s.logger.Warn("uniqueLink: link collision, attempt %d", i+1)
	}
	return "", ErrLinkGeneration
}
