package create_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается ISO-8601"
	msgInvalidInput       = "некорректные данные заявки"
	msgTherapistNotFound  = "ссылка для записи не найдена"
	msgSlotConflict       = "выбранное время уже занято"
	msgSlotTaken          = "выбранное время только что занял другой посетитель"
	msgPartialSeries      = "серия сохранена не полностью"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/book/{bookingLink}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingLink := mux.Vars(r)["bookingLink"]

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /book/{link}/bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingLink)
	if err != nil {
		h.logger.Warn("POST /book/{link}/bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var partial *createBooking.PartialSeriesError
		switch {
		case errors.As(err, &partial):
			h.logger.Error("POST /book/{link}/bookings - Partial series: link=%s, series=%s, persisted=%d of %d, error=%v",
				bookingLink, partial.SeriesID, len(partial.PersistedIDs), partial.Total, partial.Cause)
			handlers.RespondErrorWithDetails(w, http.StatusInternalServerError, msgPartialSeries, PartialSeriesDetails{
				SeriesID:     partial.SeriesID,
				PersistedIDs: partial.PersistedIDs,
				Total:        partial.Total,
			})

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /book/{link}/bookings - Invalid input: link=%s, error=%v", bookingLink, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrTherapistNotFound):
			h.logger.Warn("POST /book/{link}/bookings - Therapist not found: link=%s", bookingLink)
			handlers.RespondNotFound(w, msgTherapistNotFound)

		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /book/{link}/bookings - Slot conflict: link=%s", bookingLink)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /book/{link}/bookings - Slot taken: link=%s", bookingLink)
			handlers.RespondConflict(w, msgSlotTaken)

		default:
			h.logger.Error("POST /book/{link}/bookings - Failed to create booking: link=%s, error=%v", bookingLink, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /book/{link}/bookings - Booking created successfully: link=%s, type=%s, records=%d",
		bookingLink, result.Type, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
