package create_booking

import "time"

// Options параметры процесса записи
type Options struct {
	DefaultOccurrences int  // Количество недель в серии по умолчанию
	MaxOccurrences     int  // Верхняя граница количества недель
	RejectConflicts    bool // Отклонять заявку, если интервал уже занят
	AtomicSeries       bool // Записывать серию одной атомарной операцией
}

// Request модель запроса на создание заявки с публичной страницы
type Request struct {
	BookingLink  string    // Публичная ссылка практикующего
	PatientName  string    // Имя посетителя
	PatientEmail string    // Email посетителя
	PatientPhone *string   // Телефон (опционально)
	StartTime    time.Time // Начало первой встречи
	EndTime      time.Time // Конец первой встречи
	Type         string    // one-time | recurring
	Occurrences  int       // Количество недель для серии, 0 = по умолчанию
	Notes        *string   // Заметки (опционально)
}

// Response модель ответа с созданными заявками
type Response struct {
	SeriesID *string
	Type     string
	Bookings []Booking
}

// Booking одна сохраненная заявка
type Booking struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Status    string
	CreatedAt time.Time
}
