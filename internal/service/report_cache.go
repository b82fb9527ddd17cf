package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// ErrNoCachedReport is returned before the first audit has completed.
var ErrNoCachedReport = errors.New("no conflict report has been generated yet")

// ReportCache keeps the most recent audit result.
type ReportCache interface {
	SaveLatest(ctx context.Context, report *model.ConflictReport) error
	Latest(ctx context.Context) (*model.ConflictReport, error)
}

// RedisReportCache stores the latest report as JSON under a single key.
type RedisReportCache struct {
	rdb *redis.Client
}

// NewRedisReportCache creates a new RedisReportCache.
func NewRedisReportCache(rdb *redis.Client) *RedisReportCache {
	return &RedisReportCache{rdb: rdb}
}

func (c *RedisReportCache) SaveLatest(ctx context.Context, report *model.ConflictReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.LatestConflictReportKey(), payload, 0).Err()
}

func (c *RedisReportCache) Latest(ctx context.Context) (*model.ConflictReport, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.LatestConflictReportKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoCachedReport
	}
	if err != nil {
		return nil, err
	}
	var report model.ConflictReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// MemoryReportCache holds the latest report in process.
type MemoryReportCache struct {
	mu     sync.RWMutex
	report *model.ConflictReport
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{}
}

func (c *MemoryReportCache) SaveLatest(_ context.Context, report *model.ConflictReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
	return nil
}

func (c *MemoryReportCache) Latest(_ context.Context) (*model.ConflictReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return nil, ErrNoCachedReport
	}
	return c.report, nil
}
