package booking

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

// Repository заявки с публичной страницы, коллекция public_bookings/{bookingLink}
type Repository struct {
	store Store
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// NewID генерирует идентификатор документа
func NewID() string {
	return uuid.NewString()
}

// Create сохраняет одну заявку. Пустой ID заполняется.
func (r *Repository) Create(ctx context.Context, b *domain.BookingRecord) (*domain.BookingRecord, error) {
	if b.ID == "" {
		b.ID = NewID()
	}

	value, err := store.Encode(fromDomain(b))
	if err != nil {
		return nil, fmt.Errorf("%w: Create - encode: %v", ErrInvalidRecord, err)
	}

	if err := r.store.Put(ctx, store.PublicBookingsPath(b.BookingLink), b.ID, value); err != nil {
		return nil, fmt.Errorf("%w: Create - put %s: %v", ErrStore, b.ID, err)
	}

	return b, nil
}

// CreateAll сохраняет все заявки серии одной атомарной записью.
// Все записи должны относиться к одной ссылке.
func (r *Repository) CreateAll(ctx context.Context, bookingLink string, records []*domain.BookingRecord) ([]*domain.BookingRecord, error) {
	batch, ok := r.store.(store.BatchWriter)
	if !ok {
		return nil, ErrBatchUnsupported
	}

	docs := make(store.Snapshot, len(records))
	for _, b := range records {
		if b.BookingLink != bookingLink {
			return nil, fmt.Errorf("%w: CreateAll - record %s belongs to %q", ErrInvalidRecord, b.ID, b.BookingLink)
		}
		if b.ID == "" {
			b.ID = NewID()
		}
		value, err := store.Encode(fromDomain(b))
		if err != nil {
			return nil, fmt.Errorf("%w: CreateAll - encode: %v", ErrInvalidRecord, err)
		}
		docs[b.ID] = value
	}

	if err := batch.PutAll(ctx, store.PublicBookingsPath(bookingLink), docs); err != nil {
		return nil, fmt.Errorf("%w: CreateAll - put %d documents: %v", ErrStore, len(docs), err)
	}

	return records, nil
}

// SupportsBatch сообщает, умеет ли хранилище атомарную запись серии
func (r *Repository) SupportsBatch() bool {
	_, ok := r.store.(store.BatchWriter)
	return ok
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, bookingLink, id string) (*domain.BookingRecord, error) {
	value, err := r.store.Get(ctx, store.PublicBookingsPath(bookingLink), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - get %s: %v", ErrStore, id, err)
	}

	var doc document
	if err := store.Decode(value, &doc); err != nil {
		return nil, fmt.Errorf("%w: GetByID: %v", ErrInvalidRecord, err)
	}
	return doc.toDomain(bookingLink, id)
}

// ListByLink получает все заявки ссылки, отсортированные по времени начала
func (r *Repository) ListByLink(ctx context.Context, bookingLink string) ([]*domain.BookingRecord, error) {
	snapshot, err := r.store.List(ctx, store.PublicBookingsPath(bookingLink))
	if err != nil {
		return nil, fmt.Errorf("%w: ListByLink - list %s: %v", ErrStore, bookingLink, err)
	}

	res := make([]*domain.BookingRecord, 0, len(snapshot))
	for key, value := range snapshot {
		var doc document
		if err := store.Decode(value, &doc); err != nil {
			return nil, fmt.Errorf("%w: ListByLink %s: %v", ErrInvalidRecord, key, err)
		}
		b, err := doc.toDomain(bookingLink, key)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}

	SortByStart(res)
	return res, nil
}

// ListPending заявки, ожидающие решения практикующего
func (r *Repository) ListPending(ctx context.Context, bookingLink string) ([]*domain.BookingRecord, error) {
	all, err := r.ListByLink(ctx, bookingLink)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.BookingRecord, 0, len(all))
	for _, b := range all {
		if b.IsPending() {
			res = append(res, b)
		}
	}
	return res, nil
}

// ListBySeries все заявки одной серии
func (r *Repository) ListBySeries(ctx context.Context, bookingLink, seriesID string) ([]*domain.BookingRecord, error) {
	all, err := r.ListByLink(ctx, bookingLink)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.BookingRecord, 0)
	for _, b := range all {
		if b.SeriesID != nil && *b.SeriesID == seriesID {
			res = append(res, b)
		}
	}
	return res, nil
}

// TransitionStatus меняет статус только если заявка все еще в статусе from.
// Из нескольких конкурентных вызовов успешен ровно один, остальные получают ErrStatusChanged.
func (r *Repository) TransitionStatus(ctx context.Context, bookingLink, id string, from, to domain.BookingStatus, updatedAt time.Time) error {
	patch := store.Patch{
		"status":    string(to),
		"updatedAt": store.FormatTime(updatedAt),
	}

	err := r.store.UpdateIf(ctx, store.PublicBookingsPath(bookingLink), id, "status", string(from), patch)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrBookingNotFound
	case errors.Is(err, store.ErrConditionFailed):
		return ErrStatusChanged
	default:
		return fmt.Errorf("%w: TransitionStatus - update %s: %v", ErrStore, id, err)
	}
}

// Delete удаляет заявку
func (r *Repository) Delete(ctx context.Context, bookingLink, id string) error {
	if err := r.store.Delete(ctx, store.PublicBookingsPath(bookingLink), id); err != nil {
		return fmt.Errorf("%w: Delete - delete %s: %v", ErrStore, id, err)
	}
	return nil
}

// SortByStart упорядочивает заявки по началу, при равенстве по ID
func SortByStart(records []*domain.BookingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Range.Start(), records[j].Range.Start()
		if a.Equal(b) {
			return records[i].ID < records[j].ID
		}
		return a.Before(b)
	})
}
