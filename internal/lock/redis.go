package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pollInterval = 25 * time.Millisecond

// releaseScript deletes the key only while it still carries our token, so an
// expired lock re-acquired by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a cross-process locker built on SET NX PX. Each key expires after
// ttl so a crashed holder cannot block the timetable indefinitely.
type Redis struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

// NewRedis creates a Redis locker.
func NewRedis(rdb *redis.Client, ttl, wait time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, wait: wait}
}

// Lock acquires all keys in sorted order under one token.
func (r *Redis) Lock(ctx context.Context, keys ...string) (Unlock, error) {
	keys = normalize(keys)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := r.acquire(ctx, key, token, deadline); err != nil {
			r.release(acquired, token)
			return nil, err
		}
		acquired = append(acquired, key)
	}
	return func() { r.release(acquired, token) }, nil
}

func (r *Redis) acquire(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Redis) release(keys []string, token string) {
	// The caller's context may already be cancelled; release must still run.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, key := range keys {
		_ = releaseScript.Run(ctx, r.rdb, []string{key}, token).Err()
	}
}
