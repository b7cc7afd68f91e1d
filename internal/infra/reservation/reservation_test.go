package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func newReserver(t *testing.T, now time.Time) (*RedisReserver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisReserver(client)
	r.now = func() time.Time { return now }
	return r, mr
}

func slot(t *testing.T, start time.Time) domain.TimeRange {
	t.Helper()
	r, err := domain.NewTimeRangeFromDuration(start, time.Hour)
	require.NoError(t, err)
	return r
}

func TestRedisReserver_FirstWins(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	res, mr := newReserver(t, now)

	r := slot(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC))

	require.NoError(t, res.Reserve(ctx, "link", r, "booking-1"))
	err := res.Reserve(ctx, "link", r, "booking-2")
	assert.ErrorIs(t, err, ErrSlotTaken)

	// другая ссылка не конфликтует
	require.NoError(t, res.Reserve(ctx, "other", r, "booking-3"))

	ttl := mr.TTL(Key("link", r))
	assert.Equal(t, r.End().Sub(now), ttl)
}

func TestRedisReserver_Release(t *testing.T) {
	ctx := context.Background()
	res, mr := newReserver(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	r := slot(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC))

	require.NoError(t, res.Reserve(ctx, "link", r, "booking-1"))

	// чужой владелец не снимает удержание
	require.NoError(t, res.Release(ctx, "link", r, "booking-2"))
	assert.True(t, mr.Exists(Key("link", r)))

	require.NoError(t, res.Release(ctx, "link", r, "booking-1"))
	assert.False(t, mr.Exists(Key("link", r)))

	require.NoError(t, res.Reserve(ctx, "link", r, "booking-2"))
}

func TestRedisReserver_PastRangeUsesMinTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	res, mr := newReserver(t, now)
	r := slot(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC))

	require.NoError(t, res.Reserve(ctx, "link", r, "booking-1"))
	assert.Equal(t, minTTL, mr.TTL(Key("link", r)))

	mr.FastForward(minTTL + time.Second)
	require.NoError(t, res.Reserve(ctx, "link", r, "booking-2"))
}

func TestNoop(t *testing.T) {
	var res Reserver = Noop{}
	r := slot(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC))
	assert.NoError(t, res.Reserve(context.Background(), "link", r, "a"))
	assert.NoError(t, res.Reserve(context.Background(), "link", r, "b"))
	assert.NoError(t, res.Release(context.Background(), "link", r, "a"))
}
