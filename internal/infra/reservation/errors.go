package reservation

import "errors"

var (
	// ErrSlotTaken возвращается, когда интервал уже удерживается другой заявкой
	ErrSlotTaken = errors.New("reservation: slot already taken")

	// ErrReservation возвращается при ошибках Redis
	ErrReservation = errors.New("reservation: backend error")
)
