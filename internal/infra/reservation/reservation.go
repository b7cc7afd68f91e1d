// Package reservation holds a server-side claim on (bookingLink, range) so that
// the first committed booking for a slot wins.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// minTTL срок удержания для интервалов, которые уже закончились
const minTTL = time.Minute

// Reserver удерживает интервал за владельцем (ID заявки)
type Reserver interface {
	Reserve(ctx context.Context, bookingLink string, r domain.TimeRange, holder string) error
	Release(ctx context.Context, bookingLink string, r domain.TimeRange, holder string) error
}

// RedisReserver SETNX на ключ интервала, ключ живет до конца интервала
type RedisReserver struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisReserver создает резервирование поверх redis клиента
func NewRedisReserver(client *redis.Client) *RedisReserver {
	return &RedisReserver{client: client, now: time.Now}
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DB:           db,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: ping redis: %v", ErrReservation, err)
	}

	return rdb, nil
}

// Key ключ интервала. Публичные заявки всегда лежат на сетке слотов,
// поэтому совпадение интервала определяется точным равенством границ.
func Key(bookingLink string, r domain.TimeRange) string {
	return fmt.Sprintf("reservation:%s:%d:%d", bookingLink, r.Start().UnixMilli(), r.End().UnixMilli())
}

func (s *RedisReserver) Reserve(ctx context.Context, bookingLink string, r domain.TimeRange, holder string) error {
	ttl := r.End().Sub(s.now())
	if ttl < minTTL {
		ttl = minTTL
	}

	ok, err := s.client.SetNX(ctx, Key(bookingLink, r), holder, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: setnx: %v", ErrReservation, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotTaken, r)
	}
	return nil
}

var releaseScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// Release снимает удержание, только если им владеет holder
func (s *RedisReserver) Release(ctx context.Context, bookingLink string, r domain.TimeRange, holder string) error {
	_, err := releaseScript.Run(ctx, s.client, []string{Key(bookingLink, r)}, holder).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release: %v", ErrReservation, err)
	}
	return nil
}

// Noop используется, когда резервирование выключено
type Noop struct{}

func (Noop) Reserve(context.Context, string, domain.TimeRange, string) error { return nil }

func (Noop) Release(context.Context, string, domain.TimeRange, string) error { return nil }

var (
	_ Reserver = (*RedisReserver)(nil)
	_ Reserver = Noop{}
)
