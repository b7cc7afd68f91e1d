package get_pending_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "профиль не найден"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/therapists/me/bookings/pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /therapists/me/bookings/pending - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetPending(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrTherapistNotFound):
			h.logger.Warn("GET /therapists/me/bookings/pending - Profile not found: user_id=%s", userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /therapists/me/bookings/pending - Access denied: user_id=%s", userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /therapists/me/bookings/pending - Failed to get bookings: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /therapists/me/bookings/pending - Bookings retrieved successfully: user_id=%s, count=%d",
		userID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
