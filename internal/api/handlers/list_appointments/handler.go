package list_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidRange  = "некорректный период, ожидаются from и to в формате ISO-8601"
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

// Handle GET /api/v1/therapists/me/appointments
// Query params: from, to (опционально, только вместе)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /therapists/me/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	var (
		result *models.AppointmentListResponse
		err    error
	)
	switch {
	case fromStr == "" && toStr == "":
		result, err = h.service.List(r.Context(), userID)

	case fromStr != "" && toStr != "":
		from, fromErr := handlers.ParseTime(fromStr)
		to, toErr := handlers.ParseTime(toStr)
		if fromErr != nil || toErr != nil || to.Before(from) {
			h.logger.Warn("GET /therapists/me/appointments - Invalid range: from=%q, to=%q", fromStr, toStr)
			handlers.RespondBadRequest(w, msgInvalidRange)
			return
		}
		result, err = h.service.ListByRange(r.Context(), userID, from, to)

	default:
		h.logger.Warn("GET /therapists/me/appointments - Incomplete range: from=%q, to=%q", fromStr, toStr)
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}

	if err != nil {
		h.logger.Error("GET /therapists/me/appointments - Failed to get appointments: user_id=%s, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /therapists/me/appointments - Appointments retrieved successfully: user_id=%s, count=%d",
		userID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
