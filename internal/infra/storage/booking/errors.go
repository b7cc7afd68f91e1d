package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда заявка не найдена
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrStatusChanged возвращается, когда статус заявки уже не тот, что ожидался
	ErrStatusChanged = errors.New("booking.repository: booking status changed")

	// ErrBatchUnsupported возвращается, когда хранилище не умеет атомарную запись серии
	ErrBatchUnsupported = errors.New("booking.repository: store does not support batch writes")

	// ErrInvalidRecord возвращается, когда документ нельзя преобразовать в заявку
	ErrInvalidRecord = errors.New("booking.repository: invalid booking document")

	// ErrStore возвращается при ошибках хранилища
	ErrStore = errors.New("booking.repository: store error")
)
