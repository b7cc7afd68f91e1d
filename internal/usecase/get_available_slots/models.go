package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на получение слотов по публичной ссылке
type Request struct {
	BookingLink string // Публичная ссылка практикующего
	Type        string // Значение параметра ?type=, "recurring" фиксирует тип записи
}

// Response модель ответа со слотами, сгруппированными по дням
type Response struct {
	TherapistName          string
	Specialization         *string
	SessionDurationMinutes int
	TimeZone               string
	ForcedKind             *domain.BookingKind // Тип записи, навязанный ссылкой
	Days                   []Day
}

// Day слоты одного календарного дня в часовом поясе практикующего
type Day struct {
	Date  string // YYYY-MM-DD
	Slots []Slot
}

// Slot модель временного слота
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}
