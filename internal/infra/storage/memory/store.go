// Package memory is an in-process document store used for tests and local runs.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
)

type subscriber struct {
	collection string
	onChange   func(store.Snapshot)
}

// Store keeps documents in maps guarded by a RWMutex.
// Subscribers are notified synchronously on the writing goroutine, after the data lock is released.
// Notifications are serialized by notifyMu: each delivery snapshots the collection while holding it,
// so the last snapshot a subscriber receives is the current state. onChange must not write to the store.
type Store struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	data     map[string]map[string]json.RawMessage
	subs     map[uint64]*subscriber
	nextID   uint64
}

func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]json.RawMessage),
		subs: make(map[uint64]*subscriber),
	}
}

func (s *Store) Put(ctx context.Context, collection, id string, value json.RawMessage) error {
	if err := store.ValidatePath(collection, id); err != nil {
		return err
	}
	if err := store.ValidateDocument(value); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.collection(collection)[id] = clone(value)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// PutAll writes every document under one lock, subscribers see a single change
func (s *Store) PutAll(ctx context.Context, collection string, docs store.Snapshot) error {
	for id, value := range docs {
		if err := store.ValidatePath(collection, id); err != nil {
			return err
		}
		if err := store.ValidateDocument(value); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	c := s.collection(collection)
	for id, value := range docs {
		c[id] = clone(value)
	}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if err := store.ValidatePath(collection, id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(value), nil
}

func (s *Store) List(ctx context.Context, collection string) (store.Snapshot, error) {
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(collection), nil
}

func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	return s.update(ctx, collection, id, patch, nil)
}

// UpdateIf проверка поля и запись выполняются под одной блокировкой
func (s *Store) UpdateIf(ctx context.Context, collection, id, field, expected string, patch store.Patch) error {
	return s.update(ctx, collection, id, patch, func(current json.RawMessage) error {
		ok, err := store.FieldEquals(current, field, expected)
		if err != nil {
			return err
		}
		if !ok {
			return store.ErrConditionFailed
		}
		return nil
	})
}

func (s *Store) update(ctx context.Context, collection, id string, patch store.Patch, check func(json.RawMessage) error) error {
	if err := store.ValidatePath(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	current, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if check != nil {
		if err := check(current); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	merged, err := store.MergePatch(current, patch)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.data[collection][id] = merged
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := store.ValidatePath(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, existed := s.data[collection][id]
	delete(s.data[collection], id)
	s.mu.Unlock()

	if existed {
		s.notify(collection)
	}
	return nil
}

// Subscribe delivers the current snapshot before returning. onError is never called:
// an in-process store has no transport to fail.
func (s *Store) Subscribe(ctx context.Context, collection string, onChange func(store.Snapshot), _ func(error)) (func(), error) {
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}

	// начальный снимок не должен обогнать уведомление о более поздней записи
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = &subscriber{collection: collection, onChange: onChange}
	initial := s.snapshotLocked(collection)
	s.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(stop)
		})
	}

	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				unsubscribe()
			case <-stop:
			}
		}()
	}

	onChange(initial)
	return unsubscribe, nil
}

func (s *Store) notify(collection string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	snapshot := s.snapshotLocked(collection)
	targets := make([]func(store.Snapshot), 0)
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub.onChange)
		}
	}
	s.mu.RUnlock()

	for _, fn := range targets {
		// у каждого подписчика своя копия
		fn(copySnapshot(snapshot))
	}
}

func (s *Store) collection(name string) map[string]json.RawMessage {
	c, ok := s.data[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		s.data[name] = c
	}
	return c
}

func (s *Store) snapshotLocked(collection string) store.Snapshot {
	res := make(store.Snapshot, len(s.data[collection]))
	for id, value := range s.data[collection] {
		res[id] = clone(value)
	}
	return res
}

func copySnapshot(in store.Snapshot) store.Snapshot {
	res := make(store.Snapshot, len(in))
	for id, value := range in {
		res[id] = clone(value)
	}
	return res
}

func clone(v json.RawMessage) json.RawMessage {
	return bytes.Clone(v)
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.BatchWriter = (*Store)(nil)
)
