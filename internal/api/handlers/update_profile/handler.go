package update_profile

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProfile     = "некорректные данные профиля"
	msgNotFound           = "профиль не найден"
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

// Handle PUT /api/v1/therapists/me
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /therapists/me - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateProfileRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /therapists/me - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	profile, err := h.service.Update(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, therapists.ErrInvalidInput):
			h.logger.Warn("PUT /therapists/me - Invalid profile: user_id=%s, error=%v", userID, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidProfile, err.Error())

		case errors.Is(err, therapists.ErrTherapistNotFound):
			h.logger.Warn("PUT /therapists/me - Profile not found: user_id=%s", userID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("PUT /therapists/me - Failed to update profile: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /therapists/me - Profile updated successfully: user_id=%s", userID)
	handlers.RespondJSON(w, http.StatusOK, profile)
}
