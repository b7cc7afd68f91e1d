package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда встреча не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrBatchUnsupported возвращается, когда хранилище не умеет атомарную запись серии
	ErrBatchUnsupported = errors.New("appointment.repository: store does not support batch writes")

	// ErrInvalidRecord возвращается, когда документ нельзя преобразовать во встречу
	ErrInvalidRecord = errors.New("appointment.repository: invalid appointment document")

	// ErrStore возвращается при ошибках хранилища
	ErrStore = errors.New("appointment.repository: store error")
)
