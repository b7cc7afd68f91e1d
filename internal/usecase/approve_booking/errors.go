package approve_booking

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль практикующего не создан
	ErrTherapistNotFound = errors.New("approve_booking: therapist not found")

	// ErrBookingNotFound возвращается, когда заявка не найдена по ссылке практикующего
	ErrBookingNotFound = errors.New("approve_booking: booking not found")

	// ErrAccessDenied возвращается, когда у практикующего нет публичной ссылки
	ErrAccessDenied = errors.New("approve_booking: access denied")

	// ErrInvalidTransition возвращается, когда заявка уже не ожидает решения
	ErrInvalidTransition = errors.New("approve_booking: booking is not pending")

	// ErrSlotConflict возвращается, когда интервал занят встречей (при включенной перепроверке)
	ErrSlotConflict = errors.New("approve_booking: slot conflicts with a scheduled appointment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("approve_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("approve_booking: internal error")
)
