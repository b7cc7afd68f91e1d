package regenerate_booking_link

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "профиль не найден"
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

// Handle POST /api/v1/therapists/me/booking-link
// Старая ссылка перестает работать сразу
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /therapists/me/booking-link - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.RegenerateBookingLink(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, therapists.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/me/booking-link - Profile not found: user_id=%s", userID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /therapists/me/booking-link - Failed to regenerate link: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/me/booking-link - Link regenerated successfully: user_id=%s", userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
