package get_public_profile

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists"
)

const (
	msgInvalidType       = "некорректный тип записи"
	msgTherapistNotFound = "ссылка для записи не найдена"
)

type Handler struct {
	service TherapistService
	logger  Logger
}

func NewHandler(service TherapistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/book/{bookingLink}
// Query params: type (опционально)
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingLink := mux.Vars(r)["bookingLink"]

	var forced *domain.BookingKind
	if typ := r.URL.Query().Get("type"); typ != "" {
		kind, err := domain.ParseBookingKind(typ)
		if err != nil {
			h.logger.Warn("GET /book/{link} - Invalid type: link=%s, type=%s", bookingLink, typ)
			handlers.RespondBadRequest(w, msgInvalidType)
			return
		}
		forced = &kind
	}

	profile, err := h.service.GetPublicProfile(r.Context(), bookingLink, forced)
	if err != nil {
		switch {
		case errors.Is(err, therapists.ErrTherapistNotFound), errors.Is(err, therapists.ErrInvalidInput):
			h.logger.Warn("GET /book/{link} - Therapist not found: link=%s", bookingLink)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		default:
			h.logger.Error("GET /book/{link} - Failed to get profile: link=%s, error=%v", bookingLink, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /book/{link} - Profile retrieved successfully: link=%s", bookingLink)
	handlers.RespondJSON(w, http.StatusOK, profile)
}
