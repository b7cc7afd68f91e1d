package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidRequest    = "некорректные параметры запроса"
	msgTherapistNotFound = "ссылка для записи не найдена"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/book/{bookingLink}/slots
// Query params: type (optional, "recurring" фиксирует тип записи)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingLink := mux.Vars(r)["bookingLink"]

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		BookingLink: bookingLink,
		Type:        r.URL.Query().Get("type"),
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrTherapistNotFound):
			h.logger.Warn("GET /book/{link}/slots - Therapist not found: link=%s", bookingLink)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /book/{link}/slots - Invalid request: link=%s, error=%v", bookingLink, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("GET /book/{link}/slots - Failed to get slots: link=%s, error=%v", bookingLink, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /book/{link}/slots - Slots retrieved successfully: link=%s, days=%d", bookingLink, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
