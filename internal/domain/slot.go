package domain

// Slot is a computed candidate range offered on the public page. Never persisted.
type Slot struct {
	Range     TimeRange
	Available bool
}

// SlotsAvailable returns only the slots still open for booking
func SlotsAvailable(slots []Slot) []Slot {
	res := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			res = append(res, s)
		}
	}
	return res
}
