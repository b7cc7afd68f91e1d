// Package postgres implements the document store on a single jsonb table.
// Subscriptions are fed by LISTEN/NOTIFY: every write notifies the collection path.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

const refreshTimeout = 5 * time.Second

type subscription struct {
	collection string
	onChange   func(store.Snapshot)
	onError    func(error)
}

// Store документное хранилище поверх PostgreSQL
type Store struct {
	db        DB
	txManager TransactionManager
	listener  Listener
	channel   string
	metrics   Metrics
	logger    Logger

	mu        sync.Mutex
	subs      map[uint64]*subscription
	nextID    uint64
	listening bool
}

// NewStore создает хранилище. listener может быть nil, тогда Subscribe отдает только начальный снимок.
func NewStore(db DB, txManager TransactionManager, listener Listener, channel string, metrics Metrics, logger Logger) *Store {
	return &Store{
		db:        db,
		txManager: txManager,
		listener:  listener,
		channel:   channel,
		metrics:   metrics,
		logger:    logger,
		subs:      make(map[uint64]*subscription),
	}
}

// Migrate создает таблицу documents, если её нет
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: Migrate: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, id string, value json.RawMessage) (err error) {
	defer s.observe("put", time.Now(), &err)

	if err := store.ValidatePath(collection, id); err != nil {
		return err
	}
	if err := store.ValidateDocument(value); err != nil {
		return err
	}

	executor := txmanager.GetExecutor(ctx, s.db)
	if err := s.upsert(ctx, executor, collection, id, value); err != nil {
		return err
	}
	return s.notify(ctx, executor, collection)
}

// PutAll пишет серию документов в одной транзакции
func (s *Store) PutAll(ctx context.Context, collection string, docs store.Snapshot) (err error) {
	defer s.observe("put_all", time.Now(), &err)

	for id, value := range docs {
		if err := store.ValidatePath(collection, id); err != nil {
			return err
		}
		if err := store.ValidateDocument(value); err != nil {
			return err
		}
	}

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		executor := txmanager.GetExecutor(txCtx, s.db)
		for id, value := range docs {
			if err := s.upsert(txCtx, executor, collection, id, value); err != nil {
				return err
			}
		}
		// NOTIFY внутри транзакции доставляется после COMMIT
		return s.notify(txCtx, executor, collection)
	})
}

func (s *Store) Get(ctx context.Context, collection, id string) (_ json.RawMessage, err error) {
	defer s.observe("get", time.Now(), &err)

	if err := store.ValidatePath(collection, id); err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Select("value").
		From("documents").
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var value []byte
	err = txmanager.GetExecutor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan document: %v", ErrScanRow, err)
	}

	return value, nil
}

func (s *Store) List(ctx context.Context, collection string) (_ store.Snapshot, err error) {
	defer s.observe("list", time.Now(), &err)

	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Select("id", "value").
		From("documents").
		Where(squirrel.Eq{"collection": collection}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := txmanager.GetExecutor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	res := make(store.Snapshot)
	for rows.Next() {
		var (
			id    string
			value []byte
		)
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("%w: List - scan document: %v", ErrScanRow, err)
		}
		res[id] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - iterate rows: %v", ErrScanRow, err)
	}

	return res, nil
}

// Update применяет merge-patch на стороне БД: value || patch, затем удаляются поля, выставленные в nil
func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch) (err error) {
	defer s.observe("update", time.Now(), &err)
	return s.update(ctx, collection, id, patch, nil)
}

// UpdateIf то же, что Update, но строка меняется только при value->>field = expected
func (s *Store) UpdateIf(ctx context.Context, collection, id, field, expected string, patch store.Patch) (err error) {
	defer s.observe("update_if", time.Now(), &err)
	return s.update(ctx, collection, id, patch, &condition{field: field, expected: expected})
}

type condition struct {
	field    string
	expected string
}

func (s *Store) update(ctx context.Context, collection, id string, patch store.Patch, cond *condition) error {
	if err := store.ValidatePath(collection, id); err != nil {
		return err
	}

	query, args, err := buildUpdate(collection, id, patch, cond)
	if err != nil {
		return err
	}

	executor := txmanager.GetExecutor(ctx, s.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		if cond == nil {
			return store.ErrNotFound
		}
		// строки нет или условие не выполнено
		if _, err := s.Get(ctx, collection, id); err != nil {
			return err
		}
		return store.ErrConditionFailed
	}

	return s.notify(ctx, executor, collection)
}

func buildUpdate(collection, id string, patch store.Patch, cond *condition) (string, []interface{}, error) {
	set, removed := store.SplitPatch(patch)
	setJSON, err := json.Marshal(set)
	if err != nil {
		return "", nil, fmt.Errorf("%w: patch: %v", store.ErrInvalidDocument, err)
	}

	builder := psqlbuilder.Update("documents").
		Set("value", squirrel.Expr("(value || ?::jsonb) - ?::text[]", string(setJSON), pq.Array(removed))).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"collection": collection, "id": id})
	if cond != nil {
		builder = builder.Where(squirrel.Expr("value ->> ?::text = ?", cond.field, cond.expected))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}
	return query, args, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if err := store.ValidatePath(collection, id); err != nil {
		return err
	}

	query, args, err := psqlbuilder.Delete("documents").
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	executor := txmanager.GetExecutor(ctx, s.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil
	}
	return s.notify(ctx, executor, collection)
}

// Subscribe регистрирует подписчика и сразу отдает текущий снимок коллекции
func (s *Store) Subscribe(ctx context.Context, collection string, onChange func(store.Snapshot), onError func(error)) (func(), error) {
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := s.ensureListening(); err != nil {
		return nil, err
	}

	initial, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = &subscription{collection: collection, onChange: onChange, onError: onError}
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

// Close останавливает LISTEN-соединение
func (s *Store) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Store) upsert(ctx context.Context, executor txmanager.DBExecutor, collection, id string, value json.RawMessage) error {
	query, args, err := psqlbuilder.Insert("documents").
		Columns("collection", "id", "value").
		Values(collection, id, string(value)).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: upsert - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, executor txmanager.DBExecutor, collection string) error {
	if s.channel == "" {
		return nil
	}
	if _, err := executor.ExecContext(ctx, "SELECT pg_notify($1, $2)", s.channel, collection); err != nil {
		return fmt.Errorf("%w: notify: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) ensureListening() error {
	if s.listener == nil || s.channel == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening {
		return nil
	}

	if err := s.listener.Listen(s.channel); err != nil {
		return fmt.Errorf("%w: listen %s: %v", ErrExecQuery, s.channel, err)
	}
	s.listening = true
	go s.dispatch()

	s.logger.Info("postgres store: listening on channel %s", s.channel)
	return nil
}

func (s *Store) dispatch() {
	for n := range s.listener.NotificationChannel() {
		if n == nil {
			s.logger.Warn("postgres store: listener reconnected, refreshing all subscriptions")
			for _, collection := range s.subscribedCollections() {
				s.refresh(collection)
			}
			continue
		}
		s.refresh(n.Payload)
	}
}

func (s *Store) refresh(collection string) {
	s.mu.Lock()
	targets := make([]*subscription, 0)
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	snapshot, err := s.List(ctx, collection)
	for _, sub := range targets {
		if err != nil {
			if sub.onError != nil {
				sub.onError(err)
			}
			continue
		}
		copied := make(store.Snapshot, len(snapshot))
		for id, v := range snapshot {
			copied[id] = v
		}
		sub.onChange(copied)
	}
}

func (s *Store) subscribedCollections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	res := make([]string, 0, len(s.subs))
	for _, sub := range s.subs {
		if !seen[sub.collection] {
			seen[sub.collection] = true
			res = append(res, sub.collection)
		}
	}
	return res
}

func (s *Store) observe(operation string, started time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveStore(operation, started, *err)
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.BatchWriter = (*Store)(nil)
)
