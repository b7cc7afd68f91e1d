package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
)

// Repository встречи практикующего, коллекция appointments/{therapistId}
type Repository struct {
	store Store
}

// NewRepository создает новый экземпляр репозитория встреч
func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// Create сохраняет встречу. Пустой ID заполняется.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	value, err := store.Encode(fromDomain(a))
	if err != nil {
		return nil, fmt.Errorf("%w: Create - encode: %v", ErrInvalidRecord, err)
	}

	if err := r.store.Put(ctx, store.AppointmentsPath(a.TherapistID), a.ID, value); err != nil {
		return nil, fmt.Errorf("%w: Create - put %s: %v", ErrStore, a.ID, err)
	}
	return a, nil
}

// CreateAll сохраняет серию встреч одной атомарной записью
func (r *Repository) CreateAll(ctx context.Context, therapistID string, items []*domain.Appointment) ([]*domain.Appointment, error) {
	batch, ok := r.store.(store.BatchWriter)
	if !ok {
		return nil, ErrBatchUnsupported
	}

	docs := make(store.Snapshot, len(items))
	for _, a := range items {
		if a.TherapistID != therapistID {
			return nil, fmt.Errorf("%w: CreateAll - appointment belongs to %q", ErrInvalidRecord, a.TherapistID)
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		value, err := store.Encode(fromDomain(a))
		if err != nil {
			return nil, fmt.Errorf("%w: CreateAll - encode: %v", ErrInvalidRecord, err)
		}
		docs[a.ID] = value
	}

	if err := batch.PutAll(ctx, store.AppointmentsPath(therapistID), docs); err != nil {
		return nil, fmt.Errorf("%w: CreateAll - put %d documents: %v", ErrStore, len(docs), err)
	}
	return items, nil
}

// SupportsBatch сообщает, умеет ли хранилище атомарную запись серии
func (r *Repository) SupportsBatch() bool {
	_, ok := r.store.(store.BatchWriter)
	return ok
}

// GetByID получает встречу по ID
func (r *Repository) GetByID(ctx context.Context, therapistID, id string) (*domain.Appointment, error) {
	value, err := r.store.Get(ctx, store.AppointmentsPath(therapistID), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - get %s: %v", ErrStore, id, err)
	}

	var doc document
	if err := store.Decode(value, &doc); err != nil {
		return nil, fmt.Errorf("%w: GetByID: %v", ErrInvalidRecord, err)
	}
	return doc.toDomain(therapistID, id)
}

// List все встречи практикующего по возрастанию начала
func (r *Repository) List(ctx context.Context, therapistID string) ([]*domain.Appointment, error) {
	snapshot, err := r.store.List(ctx, store.AppointmentsPath(therapistID))
	if err != nil {
		return nil, fmt.Errorf("%w: List - list %s: %v", ErrStore, therapistID, err)
	}
	return decodeSnapshot(therapistID, snapshot)
}

// ListByRange встречи, начало которых лежит в [from, to]
func (r *Repository) ListByRange(ctx context.Context, therapistID string, from, to time.Time) ([]*domain.Appointment, error) {
	all, err := r.List(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Appointment, 0)
	for _, a := range all {
		start := a.Range.Start()
		if !start.Before(from) && !start.After(to) {
			res = append(res, a)
		}
	}
	return res, nil
}

// ListBySeries встречи одной серии
func (r *Repository) ListBySeries(ctx context.Context, therapistID, seriesID string) ([]*domain.Appointment, error) {
	all, err := r.List(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Appointment, 0)
	for _, a := range all {
		if a.SeriesID != nil && *a.SeriesID == seriesID {
			res = append(res, a)
		}
	}
	return res, nil
}

// Update сохраняет изменяемые поля через merge-patch
func (r *Repository) Update(ctx context.Context, a *domain.Appointment) error {
	if err := r.store.Update(ctx, store.AppointmentsPath(a.TherapistID), a.ID, mutablePatch(a)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("%w: Update - update %s: %v", ErrStore, a.ID, err)
	}
	return nil
}

// UpdateStatus меняет только статус
func (r *Repository) UpdateStatus(ctx context.Context, therapistID, id string, status domain.AppointmentStatus, updatedAt time.Time) error {
	patch := store.Patch{
		"status":    string(status),
		"updatedAt": store.FormatTime(updatedAt),
	}
	if err := r.store.Update(ctx, store.AppointmentsPath(therapistID), id, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("%w: UpdateStatus - update %s: %v", ErrStore, id, err)
	}
	return nil
}

// Delete удаляет встречу
func (r *Repository) Delete(ctx context.Context, therapistID, id string) error {
	if err := r.store.Delete(ctx, store.AppointmentsPath(therapistID), id); err != nil {
		return fmt.Errorf("%w: Delete - delete %s: %v", ErrStore, id, err)
	}
	return nil
}

// Watch подписывается на коллекцию и отдает отсортированный список при каждом изменении
func (r *Repository) Watch(
	ctx context.Context,
	therapistID string,
	onChange func([]*domain.Appointment),
	onError func(error),
) (func(), error) {
	unsubscribe, err := r.store.Subscribe(ctx, store.AppointmentsPath(therapistID),
		func(snapshot store.Snapshot) {
			items, err := decodeSnapshot(therapistID, snapshot)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			onChange(items)
		},
		func(err error) {
			if onError != nil {
				onError(fmt.Errorf("%w: Watch: %v", ErrStore, err))
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Watch - subscribe %s: %v", ErrStore, therapistID, err)
	}
	return unsubscribe, nil
}

// SortByStart упорядочивает встречи по началу, при равенстве по ID
func SortByStart(items []*domain.Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Range.Start(), items[j].Range.Start()
		if a.Equal(b) {
			return items[i].ID < items[j].ID
		}
		return a.Before(b)
	})
}
