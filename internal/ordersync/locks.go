package ordersync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// OrderLocks serializes syncs of the same iute order id so a poll cycle
// and a webhook firing together do not interleave their Shopify mutations.
type OrderLocks interface {
	Acquire(ctx context.Context, orderID string) (release func(), err error)
}

// MemoryLocks keys a mutex per order id. Sufficient for a single instance.
type MemoryLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryLocks() *MemoryLocks {
	return &MemoryLocks{locks: map[string]*lockEntry{}}
}

func (l *MemoryLocks) Acquire(_ context.Context, orderID string) (func(), error) {
	l.mu.Lock()
	e := l.locks[orderID]
	if e == nil {
		e = &lockEntry{}
		l.locks[orderID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, orderID)
		}
		l.mu.Unlock()
	}, nil
}

// RedisLocks holds a SET NX lease per order id, for deployments running
// more than one instance against the same shop.
type RedisLocks struct {
	TTL time.Duration
	rdb *redis.Client
}

func NewRedisLocks(url string) (*RedisLocks, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisLocks{TTL: 30 * time.Second, rdb: redis.NewClient(opt)}, nil
}

func (l *RedisLocks) Acquire(ctx context.Context, orderID string) (func(), error) {
	key := "iutesync:lock:" + orderID
	val := uuid.New().String()
	for {
		ok, err := l.rdb.SetNX(ctx, key, val, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// Best-effort release: only delete our own lease. The TTL covers
		// the crash case.
		if v, err := l.rdb.Get(ctx, key).Result(); err == nil && v == val {
			_ = l.rdb.Del(ctx, key).Err()
		}
	}, nil
}
