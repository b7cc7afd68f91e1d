package get_available_slots

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда ссылка не принадлежит ни одному практикующему
	ErrTherapistNotFound = errors.New("get_available_slots: therapist not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
