package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// EventBus fans timetable events out to stream subscribers.
type EventBus interface {
	Publish(ctx context.Context, ev model.TimetableEvent) error
	// Subscribe delivers events until ctx is done; the channel is then closed.
	Subscribe(ctx context.Context) (<-chan model.TimetableEvent, error)
}

// ─── Redis pub/sub ──────────────────────────────────────────────────

// RedisEventBus publishes on the timetable events channel so every server
// instance can stream every write.
type RedisEventBus struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisEventBus creates a new RedisEventBus.
func NewRedisEventBus(rdb *redis.Client, log zerolog.Logger) *RedisEventBus {
	return &RedisEventBus{rdb: rdb, log: log.With().Str("component", "event_bus").Logger()}
}

func (b *RedisEventBus) Publish(ctx context.Context, ev model.TimetableEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, config.CacheKey.TimetableEventsChannel(), payload).Err()
}

func (b *RedisEventBus) Subscribe(ctx context.Context) (<-chan model.TimetableEvent, error) {
	sub := b.rdb.Subscribe(ctx, config.CacheKey.TimetableEventsChannel())
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan model.TimetableEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.TimetableEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn().Err(err).Msg("Dropping malformed timetable event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// ─── In-process ─────────────────────────────────────────────────────

// LocalEventBus delivers events to subscribers of this process only.
// Slow subscribers lose events rather than block writers.
type LocalEventBus struct {
	mu   sync.Mutex
	subs map[chan model.TimetableEvent]struct{}
}

// NewLocalEventBus creates a new LocalEventBus.
func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{subs: make(map[chan model.TimetableEvent]struct{})}
}

func (b *LocalEventBus) Publish(_ context.Context, ev model.TimetableEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *LocalEventBus) Subscribe(ctx context.Context) (<-chan model.TimetableEvent, error) {
	ch := make(chan model.TimetableEvent, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}
