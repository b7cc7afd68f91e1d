package therapist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
)

// Repository профили практикующих, коллекция therapists
type Repository struct {
	store Store
}

// NewRepository создает новый экземпляр репозитория профилей
func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// Get получает профиль по ID пользователя
func (r *Repository) Get(ctx context.Context, userID string) (*domain.TherapistProfile, error) {
	value, err := r.store.Get(ctx, store.TherapistsPath(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, ErrTherapistNotFound
		}
		return nil, fmt.Errorf("%w: Get - get %s: %v", ErrStore, userID, err)
	}

	var doc document
	if err := store.Decode(value, &doc); err != nil {
		return nil, fmt.Errorf("%w: Get: %v", ErrInvalidRecord, err)
	}
	return doc.toDomain(userID)
}

// Put создает или полностью перезаписывает профиль
func (r *Repository) Put(ctx context.Context, p *domain.TherapistProfile) error {
	value, err := store.Encode(fromDomain(p))
	if err != nil {
		return fmt.Errorf("%w: Put - encode: %v", ErrInvalidRecord, err)
	}
	if err := r.store.Put(ctx, store.TherapistsPath(), p.UserID, value); err != nil {
		return fmt.Errorf("%w: Put - put %s: %v", ErrStore, p.UserID, err)
	}
	return nil
}

// Update сохраняет изменяемые поля профиля через merge-patch
func (r *Repository) Update(ctx context.Context, p *domain.TherapistProfile) error {
	doc := fromDomain(p)
	patch := store.Patch{
		"name":            doc.Name,
		"email":           doc.Email,
		"specialization":  nil,
		"sessionDuration": doc.SessionDuration,
		"workingHours": map[string]string{
			"start": doc.WorkingHours.Start.String(),
			"end":   doc.WorkingHours.End.String(),
		},
		"workingDays":              doc.WorkingDays,
		"timeZone":                 doc.TimeZone,
		"googleCalendarIntegrated": doc.GoogleCalendarIntegrated,
		"updatedAt":                doc.UpdatedAt,
	}
	if p.Specialization != nil {
		patch["specialization"] = *p.Specialization
	}

	return r.patch(ctx, p.UserID, patch, "Update")
}

// UpdateBookingLink сохраняет новую публичную ссылку
func (r *Repository) UpdateBookingLink(ctx context.Context, userID, bookingLink string, updatedAt time.Time) error {
	return r.patch(ctx, userID, store.Patch{
		"bookingLink": bookingLink,
		"updatedAt":   store.FormatTime(updatedAt),
	}, "UpdateBookingLink")
}

// FindByBookingLink ищет профиль по публичной ссылке (полный просмотр коллекции)
func (r *Repository) FindByBookingLink(ctx context.Context, bookingLink string) (*domain.TherapistProfile, error) {
	if bookingLink == "" {
		return nil, ErrTherapistNotFound
	}

	snapshot, err := r.store.List(ctx, store.TherapistsPath())
	if err != nil {
		return nil, fmt.Errorf("%w: FindByBookingLink - list: %v", ErrStore, err)
	}

	for key, value := range snapshot {
		var doc document
		if err := store.Decode(value, &doc); err != nil {
			return nil, fmt.Errorf("%w: FindByBookingLink %s: %v", ErrInvalidRecord, key, err)
		}
		if doc.BookingLink == bookingLink {
			return doc.toDomain(key)
		}
	}

	return nil, ErrTherapistNotFound
}

func (r *Repository) patch(ctx context.Context, userID string, patch store.Patch, op string) error {
	if err := r.store.Update(ctx, store.TherapistsPath(), userID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return ErrTherapistNotFound
		}
		return fmt.Errorf("%w: %s - update %s: %v", ErrStore, op, userID, err)
	}
	return nil
}
