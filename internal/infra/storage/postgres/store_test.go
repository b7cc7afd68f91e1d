package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// Интеграционные тесты запускаются только с TEST_DATABASE_DSN
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.Nop()
	listener := NewPQListener(dsn, log)
	s := NewStore(db, txmanager.NewTransactionManager(db), listener, "document_changes_test", nil, log)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	_, err = db.ExecContext(ctx, "DELETE FROM documents WHERE collection LIKE 'test_%'")
	require.NoError(t, err)

	return s
}

func TestStore_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	col := "test_appointments/u1"

	require.NoError(t, s.Put(ctx, col, "a1", json.RawMessage(`{"status":"scheduled","notes":"x"}`)))

	got, err := s.Get(ctx, col, "a1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"scheduled","notes":"x"}`, string(got))

	require.NoError(t, s.Update(ctx, col, "a1", store.Patch{"status": "completed", "notes": nil}))
	got, err = s.Get(ctx, col, "a1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, string(got))

	assert.ErrorIs(t, s.Update(ctx, col, "missing", store.Patch{"a": 1}), store.ErrNotFound)

	require.NoError(t, s.PutAll(ctx, col, store.Snapshot{
		"a2": json.RawMessage(`{"i":2}`),
		"a3": json.RawMessage(`{"i":3}`),
	}))
	list, err := s.List(ctx, col)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	require.NoError(t, s.Delete(ctx, col, "a1"))
	_, err = s.Get(ctx, col, "a1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_SubscribeReceivesNotifications(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	col := "test_public_bookings/link"

	var (
		mu   sync.Mutex
		last store.Snapshot
	)
	_, err := s.Subscribe(ctx, col, func(snap store.Snapshot) {
		mu.Lock()
		last = snap
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, col, "b1", json.RawMessage(`{"status":"pending"}`)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestBuildUpdate_RemovesOnlyPatchedNulls(t *testing.T) {
	query, args, err := buildUpdate("appointments/u1", "a1", store.Patch{"status": "cancelled", "notes": nil}, nil)
	require.NoError(t, err)

	assert.NotContains(t, query, "jsonb_strip_nulls")
	assert.Contains(t, query, "(value || $1::jsonb) - $2::text[]")
	require.Len(t, args, 4)
	assert.JSONEq(t, `{"status":"cancelled"}`, args[0].(string))
	assert.Equal(t, pq.Array([]string{"notes"}), args[1])
}

func TestBuildUpdate_Condition(t *testing.T) {
	query, args, err := buildUpdate("public_bookings/link", "b1", store.Patch{"status": "approved"},
		&condition{field: "status", expected: "pending"})
	require.NoError(t, err)

	assert.Contains(t, query, "value ->> $5::text = $6")
	require.Len(t, args, 6)
	assert.Equal(t, "status", args[4])
	assert.Equal(t, "pending", args[5])
}

func TestStore_UpdateKeepsNestedNulls(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	col := "test_appointments/u2"

	require.NoError(t, s.Put(ctx, col, "a1", json.RawMessage(`{"status":"scheduled","notes":"x","meta":{"room":null}}`)))
	require.NoError(t, s.Update(ctx, col, "a1", store.Patch{"notes": nil}))

	got, err := s.Get(ctx, col, "a1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"scheduled","meta":{"room":null}}`, string(got))
}

func TestStore_UpdateIf(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	col := "test_public_bookings/link2"

	require.NoError(t, s.Put(ctx, col, "b1", json.RawMessage(`{"status":"pending"}`)))

	require.NoError(t, s.UpdateIf(ctx, col, "b1", "status", "pending", store.Patch{"status": "approved"}))
	assert.ErrorIs(t, s.UpdateIf(ctx, col, "b1", "status", "pending", store.Patch{"status": "approved"}), store.ErrConditionFailed)
	assert.ErrorIs(t, s.UpdateIf(ctx, col, "missing", "status", "pending", store.Patch{"status": "approved"}), store.ErrNotFound)

	got, err := s.Get(ctx, col, "b1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"approved"}`, string(got))
}
