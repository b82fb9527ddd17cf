package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process keyed mutex. Waiting is bounded by wait and by ctx.
type Local struct {
	mu   sync.Mutex
	held map[string]chan struct{}
	wait time.Duration
}

// NewLocal creates a Local locker.
func NewLocal(wait time.Duration) *Local {
	return &Local{held: make(map[string]chan struct{}), wait: wait}
}

// Lock acquires all keys in sorted order, releasing any already held on failure.
func (l *Local) Lock(ctx context.Context, keys ...string) (Unlock, error) {
	keys = normalize(keys)
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, key); err != nil {
			l.release(acquired)
			return nil, err
		}
		acquired = append(acquired, key)
	}
	return func() { l.release(acquired) }, nil
}

func (l *Local) acquire(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrTimeout
			}
			return ctx.Err()
		}
	}
}

func (l *Local) release(keys []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range keys {
		if ch, ok := l.held[key]; ok {
			close(ch)
			delete(l.held, key)
		}
	}
}
