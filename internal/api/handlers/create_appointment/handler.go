package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные встречи"
	msgNotFound           = "профиль не найден"
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

// Handle POST /api/v1/therapists/me/appointments
// type=recurring создает серию еженедельных встреч
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /therapists/me/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /therapists/me/appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("POST /therapists/me/appointments - Invalid input: user_id=%s, error=%v", userID, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidInput, err.Error())

		case errors.Is(err, appointments.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/me/appointments - Profile not found: user_id=%s", userID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /therapists/me/appointments - Failed to create appointment: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/me/appointments - Appointments created successfully: user_id=%s, count=%d",
		userID, result.Total)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
