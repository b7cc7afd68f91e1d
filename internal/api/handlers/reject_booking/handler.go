package reject_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	rejectBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reject_booking"
)

const (
	msgMissingUserID     = "отсутствует ID пользователя"
	msgInvalidBookingID  = "некорректный ID заявки"
	msgNotFound          = "заявка не найдена"
	msgForbidden         = "доступ запрещен"
	msgInvalidTransition = "заявка уже обработана"
)

// RejectBookingResponse HTTP response model
type RejectBookingResponse struct {
	RejectedBookingIDs []string `json:"rejectedBookingIds"`
}

type Handler struct {
	useCase RejectBookingUseCase
	logger  Logger
}

func NewHandler(useCase RejectBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/therapists/me/bookings/{bookingId}/reject
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /therapists/me/bookings/{id}/reject - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rejectBooking.Request{
		UserID:    userID,
		BookingID: bookingID,
	})
	if err != nil {
		switch {
		case errors.Is(err, rejectBooking.ErrInvalidInput):
			h.logger.Warn("POST /therapists/me/bookings/{id}/reject - Invalid booking ID: %q", bookingID)
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		case errors.Is(err, rejectBooking.ErrBookingNotFound), errors.Is(err, rejectBooking.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/me/bookings/{id}/reject - Booking not found: booking_id=%s, user_id=%s", bookingID, userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rejectBooking.ErrAccessDenied):
			h.logger.Warn("POST /therapists/me/bookings/{id}/reject - Access denied: user_id=%s", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rejectBooking.ErrInvalidTransition):
			h.logger.Warn("POST /therapists/me/bookings/{id}/reject - Booking is not pending: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("POST /therapists/me/bookings/{id}/reject - Failed to reject booking: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/me/bookings/{id}/reject - Booking rejected successfully: booking_id=%s, rejected=%d",
		bookingID, len(result.RejectedBookingIDs))
	handlers.RespondJSON(w, http.StatusOK, &RejectBookingResponse{RejectedBookingIDs: result.RejectedBookingIDs})
}
