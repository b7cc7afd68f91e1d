package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// Service сервис для чтения заявок с публичной страницы
type Service struct {
	bookingRepo   BookingRepository
	therapistRepo TherapistRepository
	logger        Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(
	bookingRepo BookingRepository,
	therapistRepo TherapistRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:   bookingRepo,
		therapistRepo: therapistRepo,
		logger:        logger,
	}
}

// GetPending ожидающие решения заявки практикующего по возрастанию начала
func (s *Service) GetPending(ctx context.Context, userID string) (*models.BookingListResponse, error) {
	s.logger.Info("GetPending: fetching pending bookings for user=%s", userID)

	link, err := s.bookingLink(ctx, userID, "GetPending")
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListPending(ctx, link)
	if err != nil {
		s.logger.Error("GetPending: repository error for link=%s: %v", link, err)
		return nil, fmt.Errorf("%w: GetPending - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPending: successfully fetched %d pending bookings for user=%s", len(bookings), userID)
	return models.FromDomainBookingList(bookings), nil
}

// List история заявок практикующего.
// Опционально фильтрует по статусу.
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("List: fetching bookings for user=%s, status=%v", req.UserID, req.Status)

	var status *domain.BookingStatus
	if req.Status != nil {
		st, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("List: invalid status=%s for user=%s", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &st
	}

	link, err := s.bookingLink(ctx, req.UserID, "List")
	if err != nil {
		return nil, err
	}

	all, err := s.bookingRepo.ListByLink(ctx, link)
	if err != nil {
		s.logger.Error("List: repository error for link=%s: %v", link, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	filtered := make([]*domain.BookingRecord, 0, len(all))
	for _, b := range all {
		if status == nil || b.Status == *status {
			filtered = append(filtered, b)
		}
	}

	s.logger.Info("List: successfully fetched %d bookings for user=%s", len(filtered), req.UserID)
	return models.FromDomainBookingList(filtered), nil
}

// GetByID получает заявку по ID.
// Практикующий видит только заявки своей ссылки.
func (s *Service) GetByID(ctx context.Context, userID, id string) (*models.BookingResponse, error) {
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("%w: bookingId is required", ErrInvalidInput)
	}

	link, err := s.bookingLink(ctx, userID, "GetByID")
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, link, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found for link=%s", id, link)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// bookingLink публичная ссылка практикующего
func (s *Service) bookingLink(ctx context.Context, userID, op string) (string, error) {
	therapist, err := s.therapistRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrTherapistNotFound) {
			s.logger.Warn("%s: therapist user=%s not found", op, userID)
			return "", ErrTherapistNotFound
		}
		s.logger.Error("%s: failed to get therapist user=%s: %v", op, userID, err)
		return "", fmt.Errorf("%w: %s - failed to get therapist: %v", ErrInternal, op, err)
	}
	if therapist.BookingLink == "" {
		s.logger.Warn("%s: therapist user=%s has no booking link", op, userID)
		return "", ErrAccessDenied
	}
	return therapist.BookingLink, nil
}
