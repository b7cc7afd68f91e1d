package meetingservice

import "errors"

var (
	// ErrCalendarNotConnected возвращается, когда у практикующего не подключен календарь
	ErrCalendarNotConnected = errors.New("meetingservice client: calendar is not connected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("meetingservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("meetingservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// Встреча сохраняется без ссылки на видеозвонок.
	ErrServiceDegraded = errors.New("meetingservice unavailable: graceful degradation applied")
)
