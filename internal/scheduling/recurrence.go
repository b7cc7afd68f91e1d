package scheduling

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// DefaultOccurrences weekly series length when the caller does not specify one
const DefaultOccurrences = domain.DefaultOccurrences

// ErrInvalidOccurrences is returned when fewer than one occurrence is requested
var ErrInvalidOccurrences = errors.New("scheduling: occurrences must be at least 1")

// Expand produces occurrences weekly copies of base. Occurrence i starts i*7 calendar days
// after base in base's location and keeps base's exact duration. Expand(base, 1) == [base].
func Expand(base domain.TimeRange, occurrences int) ([]domain.TimeRange, error) {
	if occurrences < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOccurrences, occurrences)
	}
	if base.IsZero() {
		return nil, fmt.Errorf("%w: empty base range", domain.ErrInvalidTimeRange)
	}

	res := make([]domain.TimeRange, occurrences)
	for i := range res {
		res[i] = base.ShiftDays(i * domain.RecurrenceStepDays)
	}
	return res, nil
}
