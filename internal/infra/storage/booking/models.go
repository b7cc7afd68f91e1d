package booking

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// document формат public_bookings/{bookingLink}/{bookingId}
type document struct {
	ID           string  `json:"id"`
	SeriesID     string  `json:"seriesId,omitempty"`
	PatientName  string  `json:"patientName"`
	PatientEmail string  `json:"patientEmail"`
	PatientPhone *string `json:"patientPhone,omitempty"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Type         string  `json:"type"`
	Notes        *string `json:"notes,omitempty"`
	Status       string  `json:"status"`
	Source       string  `json:"source,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}

func fromDomain(b *domain.BookingRecord) document {
	doc := document{
		ID:           b.ID,
		SeriesID:     ptr.Value(b.SeriesID),
		PatientName:  b.PatientName,
		PatientEmail: b.PatientEmail,
		PatientPhone: b.PatientPhone,
		StartTime:    store.FormatTime(b.Range.Start()),
		EndTime:      store.FormatTime(b.Range.End()),
		Type:         string(b.Kind),
		Notes:        b.Notes,
		Status:       string(b.Status),
		Source:       b.Source,
		CreatedAt:    store.FormatTime(b.CreatedAt),
	}
	if !b.UpdatedAt.IsZero() {
		doc.UpdatedAt = store.FormatTime(b.UpdatedAt)
	}
	return doc
}

func (d document) toDomain(bookingLink, key string) (*domain.BookingRecord, error) {
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

	createdAt, err := store.ParseOptionalTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s createdAt: %v", ErrInvalidRecord, key, err)
	}
	updatedAt, err := store.ParseOptionalTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s updatedAt: %v", ErrInvalidRecord, key, err)
	}

	status := domain.BookingStatus(d.Status)
	if status == "" {
		status = domain.BookingPending
	}

	id := d.ID
	if id == "" {
		id = key
	}

	return &domain.BookingRecord{
		ID:           id,
		BookingLink:  bookingLink,
		SeriesID:     ptr.NonEmpty(d.SeriesID),
		PatientName:  d.PatientName,
		PatientEmail: d.PatientEmail,
		PatientPhone: d.PatientPhone,
		Range:        r,
		Kind:         kind,
		Notes:        d.Notes,
		Status:       status,
		Source:       d.Source,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
