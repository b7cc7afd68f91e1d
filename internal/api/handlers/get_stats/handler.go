package get_stats

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "профиль не найден"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/therapists/me/stats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /therapists/me/stats - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		if errors.Is(err, appointments.ErrTherapistNotFound) {
			h.logger.Warn("GET /therapists/me/stats - Profile not found: user_id=%s", userID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /therapists/me/stats - Failed to get stats: user_id=%s, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
