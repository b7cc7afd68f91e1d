package get_available_slots

import (
	"fmt"
	"strings"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.BookingLink) == "" {
		return fmt.Errorf("%w: bookingLink is required", ErrInvalidInput)
	}

	if strings.Contains(req.BookingLink, "/") {
		return fmt.Errorf("%w: bookingLink has invalid format", ErrInvalidInput)
	}

	return nil
}
