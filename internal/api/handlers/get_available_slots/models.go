package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	TherapistName   string     `json:"therapistName"`
	Specialization  *string    `json:"specialization,omitempty"`
	SessionDuration int        `json:"sessionDuration"`
	TimeZone        string     `json:"timeZone"`
	ForcedType      *string    `json:"forcedType,omitempty"`
	Days            []SlotsDay `json:"days"`
}

// SlotsDay слоты одного дня
type SlotsDay struct {
	Date  string          `json:"date"`
	Slots []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	days := make([]SlotsDay, len(resp.Days))
	for i, day := range resp.Days {
		slots := make([]AvailableSlot, len(day.Slots))
		for j, slot := range day.Slots {
			slots[j] = AvailableSlot{
				StartTime: handlers.FormatTime(slot.StartTime),
				EndTime:   handlers.FormatTime(slot.EndTime),
				Available: slot.Available,
			}
		}
		days[i] = SlotsDay{Date: day.Date, Slots: slots}
	}

	res := &AvailableSlotsResponse{
		TherapistName:   resp.TherapistName,
		Specialization:  resp.Specialization,
		SessionDuration: resp.SessionDurationMinutes,
		TimeZone:        resp.TimeZone,
		Days:            days,
	}
	if resp.ForcedKind != nil {
		kind := string(*resp.ForcedKind)
		res.ForcedType = &kind
	}
	return res
}
