package therapists

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль не найден
	ErrTherapistNotFound = errors.New("therapist not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrLinkGeneration возвращается, если не удалось подобрать свободную ссылку
	ErrLinkGeneration = errors.New("failed to generate unique booking link")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
