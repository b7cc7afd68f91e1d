package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда заявка не найдена
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTherapistNotFound возвращается, когда профиль практикующего не найден
	ErrTherapistNotFound = errors.New("therapist not found")

	// ErrAccessDenied возвращается, когда у практикующего нет публичной ссылки
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
