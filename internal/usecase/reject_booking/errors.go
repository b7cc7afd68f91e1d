package reject_booking

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль практикующего не создан
	ErrTherapistNotFound = errors.New("reject_booking: therapist not found")

	// ErrBookingNotFound возвращается, когда заявка не найдена по ссылке практикующего
	ErrBookingNotFound = errors.New("reject_booking: booking not found")

	// ErrAccessDenied возвращается, когда у практикующего нет публичной ссылки
	ErrAccessDenied = errors.New("reject_booking: access denied")

	// ErrInvalidTransition возвращается, когда заявка уже не ожидает решения
	ErrInvalidTransition = errors.New("reject_booking: booking is not pending")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reject_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reject_booking: internal error")
)
