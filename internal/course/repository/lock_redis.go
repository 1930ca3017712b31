package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisLockTTL = 30 * time.Second

// releaseScript deletes the lock key only if it still holds our token, so an
// expired-and-retaken lock is never released by its previous owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with SET NX PX keys so that several service
// instances sharing one backend (for example Mongo) serialize on the same
// collection. Keys are "<prefix><kind>" and expire after ttl if the holder dies.
//
// The TTL is set once at acquisition and never extended. A holder that runs
// past it silently loses exclusion, so ttl must stay well above the longest
// expected write span (config requires at least twice the lock timeout).
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker creates a Redis-based locker. Prefix may be empty.
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if prefix == "" {
		prefix = "lock:collection:"
	}
	if ttl <= 0 {
		ttl = defaultRedisLockTTL
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, retry: 20 * time.Millisecond}
}

func (l *RedisLocker) key(kind Kind) string {
	return l.prefix + string(kind)
}

func (l *RedisLocker) Lock(ctx context.Context, kind Kind) (func() error, error) {
	token := uuid.NewString()
	key := l.key(kind)
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			return nil, err
		}
		if ok {
			return func() error {
				// the acquiring context may already be gone
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
