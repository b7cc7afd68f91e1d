package create_booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTherapistNotFound возвращается, когда ссылка не принадлежит ни одному практикующему
	ErrTherapistNotFound = errors.New("create_booking: therapist not found")

	// ErrSlotConflict возвращается, когда интервал пересекается с занятым (при включенной проверке)
	ErrSlotConflict = errors.New("create_booking: slot conflicts with an existing booking")

	// ErrSlotTaken возвращается, когда интервал уже зарезервирован другой заявкой
	ErrSlotTaken = errors.New("create_booking: slot is already taken")

	// ErrPartialSeries возвращается, когда серия сохранена не полностью
	ErrPartialSeries = errors.New("create_booking: recurring series persisted partially")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// PartialSeriesError серия прервалась на записи Failed из Total.
// PersistedIDs остаются в хранилище, откат не выполняется.
type PartialSeriesError struct {
	SeriesID     string
	PersistedIDs []string
	Failed       int
	Total        int
	Cause        error
}

func (e *PartialSeriesError) Error() string {
	return fmt.Sprintf("%v: series=%s, occurrence %d of %d failed, persisted=[%s]: %v",
		ErrPartialSeries, e.SeriesID, e.Failed+1, e.Total, strings.Join(e.PersistedIDs, ","), e.Cause)
}

func (e *PartialSeriesError) Unwrap() []error {
	return []error{ErrPartialSeries, e.Cause}
}
