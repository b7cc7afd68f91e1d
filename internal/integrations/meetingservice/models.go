package meetingservice

// MeetingRequest запрос на создание события календаря с видеозвонком
type MeetingRequest struct {
	TherapistID   string `json:"therapist_id"`
	Title         string `json:"title"`
	AttendeeEmail string `json:"attendee_email"`
	StartTime     string `json:"start_time"` // ISO-8601
	EndTime       string `json:"end_time"`   // ISO-8601
}

// Meeting созданное событие
type Meeting struct {
	MeetingLink     string `json:"meeting_link"`
	CalendarEventID string `json:"calendar_event_id"`
}
