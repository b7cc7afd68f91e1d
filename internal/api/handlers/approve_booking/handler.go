package approve_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	approveBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/approve_booking"
)

const (
	msgMissingUserID     = "отсутствует ID пользователя"
	msgInvalidBookingID  = "некорректный ID заявки"
	msgNotFound          = "заявка не найдена"
	msgForbidden         = "доступ запрещен"
	msgInvalidTransition = "заявка уже обработана"
	msgSlotConflict      = "время заявки пересекается с запланированной встречей"
)

type Handler struct {
	useCase ApproveBookingUseCase
	logger  Logger
}

func NewHandler(useCase ApproveBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/therapists/me/bookings/{bookingId}/approve
// Для заявки из серии подтверждаются все ожидающие заявки серии
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /therapists/me/bookings/{id}/approve - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &approveBooking.Request{
		UserID:    userID,
		BookingID: bookingID,
	})
	if err != nil {
		switch {
		case errors.Is(err, approveBooking.ErrInvalidInput):
			h.logger.Warn("POST /therapists/me/bookings/{id}/approve - Invalid booking ID: %q", bookingID)
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		case errors.Is(err, approveBooking.ErrBookingNotFound), errors.Is(err, approveBooking.ErrTherapistNotFound):
			h.logger.Warn("POST /therapists/me/bookings/{id}/approve - Booking not found: booking_id=%s, user_id=%s", bookingID, userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, approveBooking.ErrAccessDenied):
			h.logger.Warn("POST /therapists/me/bookings/{id}/approve - Access denied: user_id=%s", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, approveBooking.ErrInvalidTransition):
			h.logger.Warn("POST /therapists/me/bookings/{id}/approve - Booking is not pending: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, approveBooking.ErrSlotConflict):
			h.logger.Warn("POST /therapists/me/bookings/{id}/approve - Slot conflict: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgSlotConflict)

		default:
			h.logger.Error("POST /therapists/me/bookings/{id}/approve - Failed to approve booking: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /therapists/me/bookings/{id}/approve - Booking approved successfully: booking_id=%s, appointments=%d",
		bookingID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
