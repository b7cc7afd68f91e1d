package reject_booking

// Request модель запроса на отклонение заявки
type Request struct {
	UserID    string // ID практикующего (X-User-ID)
	BookingID string // ID заявки
}

// Response модель ответа с отклоненными заявками
type Response struct {
	RejectedBookingIDs []string
}
