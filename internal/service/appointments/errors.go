package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда встреча не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrTherapistNotFound возвращается, когда профиль практикующего не создан
	ErrTherapistNotFound = errors.New("therapist not found")

	// ErrSeriesNotFound возвращается, когда в серии нет ни одной встречи
	ErrSeriesNotFound = errors.New("series not found")

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
