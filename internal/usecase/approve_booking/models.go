package approve_booking

import "time"

// Options параметры подтверждения
type Options struct {
	DefaultOccurrences int  // Размер серии для заявок без seriesId
	RecheckOnApprove   bool // Перепроверять пересечения со встречами
}

// Request модель запроса на подтверждение заявки
type Request struct {
	UserID    string // ID практикующего (X-User-ID)
	BookingID string // ID заявки
}

// Response модель ответа с созданными встречами
type Response struct {
	ApprovedBookingIDs []string
	Appointments       []Appointment
}

// Appointment созданная встреча
type Appointment struct {
	ID          string
	SeriesID    *string
	StartTime   time.Time
	EndTime     time.Time
	Type        string
	Status      string
	MeetingLink *string
}
