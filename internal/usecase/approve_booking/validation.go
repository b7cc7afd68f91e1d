package approve_booking

import (
	"fmt"
	"strings"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.BookingID) == "" || strings.Contains(req.BookingID, "/") {
		return fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}

	return nil
}
