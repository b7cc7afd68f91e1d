package get_profile

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidUser   = "некорректные данные пользователя"
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

// Handle GET /api/v1/therapists/me
// При первом обращении создается профиль по умолчанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /therapists/me - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	profile, err := h.service.Ensure(r.Context(), &models.EnsureProfileRequest{
		UserID:      userID,
		Email:       r.Header.Get(middleware.HeaderUserEmail),
		DisplayName: r.Header.Get(middleware.HeaderUserName),
	})
	if err != nil {
		switch {
		case errors.Is(err, therapists.ErrInvalidInput):
			h.logger.Warn("GET /therapists/me - Invalid user: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidUser)

		default:
			h.logger.Error("GET /therapists/me - Failed to ensure profile: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /therapists/me - Profile retrieved successfully: user_id=%s, setup=%t", userID, profile.IsSetup)
	handlers.RespondJSON(w, http.StatusOK, profile)
}
