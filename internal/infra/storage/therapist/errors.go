package therapist

import "errors"

var (
	// ErrTherapistNotFound возвращается, когда профиль не найден
	ErrTherapistNotFound = errors.New("therapist.repository: therapist not found")

	// ErrInvalidRecord возвращается, когда документ нельзя преобразовать в профиль
	ErrInvalidRecord = errors.New("therapist.repository: invalid therapist document")

	// ErrStore возвращается при ошибках хранилища
	ErrStore = errors.New("therapist.repository: store error")
)
