package cancel_series

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
)

const (
	msgMissingUserID   = "отсутствует ID пользователя"
	msgInvalidSeriesID = "некорректный ID серии"
	msgNotFound        = "серия не найдена"
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

// Handle DELETE /api/v1/therapists/me/series/{seriesId}
// Завершенные и уже отмененные встречи серии не меняются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	seriesID := mux.Vars(r)["seriesId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /therapists/me/series/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.CancelSeries(r.Context(), userID, seriesID)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("DELETE /therapists/me/series/{id} - Invalid series ID: %q", seriesID)
			handlers.RespondBadRequest(w, msgInvalidSeriesID)

		case errors.Is(err, appointments.ErrSeriesNotFound):
			h.logger.Warn("DELETE /therapists/me/series/{id} - Series not found: series_id=%s", seriesID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /therapists/me/series/{id} - Failed to cancel series: series_id=%s, error=%v", seriesID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /therapists/me/series/{id} - Series cancelled successfully: series_id=%s, cancelled=%d",
		seriesID, len(result.CancelledIDs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
