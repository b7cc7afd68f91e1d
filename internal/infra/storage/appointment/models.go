package appointment

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// document формат appointments/{therapistId}/{appointmentId}
type document struct {
	ID               string  `json:"id"`
	TherapistID      string  `json:"therapistId"`
	SeriesID         string  `json:"seriesId,omitempty"`
	PatientName      string  `json:"patientName"`
	PatientEmail     string  `json:"patientEmail"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	Type             string  `json:"type"`
	Status           string  `json:"status"`
	Notes            *string `json:"notes,omitempty"`
	GoogleMeetLink   *string `json:"googleMeetLink,omitempty"`
	GoogleCalendarID *string `json:"googleCalendarId,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func fromDomain(a *domain.Appointment) document {
	return document{
		ID:               a.ID,
		TherapistID:      a.TherapistID,
		SeriesID:         ptr.Value(a.SeriesID),
		PatientName:      a.PatientName,
		PatientEmail:     a.PatientEmail,
		StartTime:        store.FormatTime(a.Range.Start()),
		EndTime:          store.FormatTime(a.Range.End()),
		Type:             string(a.Kind),
		Status:           string(a.Status),
		Notes:            a.Notes,
		GoogleMeetLink:   a.ExternalMeetingLink,
		GoogleCalendarID: a.ExternalCalendarID,
		CreatedAt:        store.FormatTime(a.CreatedAt),
		UpdatedAt:        store.FormatTime(a.UpdatedAt),
	}
}

// mutablePatch поля, которые практикующий может менять после создания
func mutablePatch(a *domain.Appointment) store.Patch {
	return store.Patch{
		"patientName":      a.PatientName,
		"patientEmail":     a.PatientEmail,
		"startTime":        store.FormatTime(a.Range.Start()),
		"endTime":          store.FormatTime(a.Range.End()),
		"type":             string(a.Kind),
		"status":           string(a.Status),
		"notes":            nilIfEmpty(a.Notes),
		"googleMeetLink":   nilIfEmpty(a.ExternalMeetingLink),
		"googleCalendarId": nilIfEmpty(a.ExternalCalendarID),
		"updatedAt":        store.FormatTime(a.UpdatedAt),
	}
}

// nilIfEmpty nil в патче удаляет поле из документа
func nilIfEmpty(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func (d document) toDomain(therapistID, key string) (*domain.Appointment, error) {
	start, err := store.ParseTime(d.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %s startTime: %v", ErrInvalidRecord, key, err)
	}
	end, err := store.ParseTime(d.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %s endTime: %v", ErrInvalidRecord, key, err)
	}
	r, err := domain.NewTimeRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
	}

	kind, err := domain.ParseBookingKind(d.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
	}

	status := domain.AppointmentScheduled
	if d.Status != "" {
		status, err = domain.ParseAppointmentStatus(d.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
		}
	}

	createdAt, err := store.ParseOptionalTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s createdAt: %v", ErrInvalidRecord, key, err)
	}
	updatedAt, err := store.ParseOptionalTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s updatedAt: %v", ErrInvalidRecord, key, err)
	}

	id := d.ID
	if id == "" {
		id = key
	}

	return &domain.Appointment{
		ID:                  id,
		TherapistID:         therapistID,
		SeriesID:            ptr.NonEmpty(d.SeriesID),
		PatientName:         d.PatientName,
		PatientEmail:        d.PatientEmail,
		Range:               r,
		Kind:                kind,
		Status:              status,
		Notes:               d.Notes,
		ExternalMeetingLink: d.GoogleMeetLink,
		ExternalCalendarID:  d.GoogleCalendarID,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

func decodeSnapshot(therapistID string, snapshot store.Snapshot) ([]*domain.Appointment, error) {
	res := make([]*domain.Appointment, 0, len(snapshot))
	for key, value := range snapshot {
		var doc document
		if err := store.Decode(value, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
		}
		a, err := doc.toDomain(therapistID, key)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	SortByStart(res)
	return res, nil
}
