// internal/store/benchmark_cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"venture-risk-workers/internal/models"
)

const (
	benchmarkKeyPrefix     = "benchmark:"
	benchmarkVersionPrefix = "benchmark:ver:"
)

// BenchmarkCache keeps raw (pre-disclosure) industry summaries in Redis.
//
// Summaries are stored under the industry's current version. An append bumps
// the version, so a summary computed before the append can only ever be
// written under a version no reader asks for again.
type BenchmarkCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBenchmarkCache(client *redis.Client, ttl time.Duration) *BenchmarkCache {
	return &BenchmarkCache{client: client, ttl: ttl}
}

func benchmarkKey(industry string, version int64) string {
	return benchmarkKeyPrefix + industry + ":" + strconv.FormatInt(version, 10)
}

func versionKey(industry string) string {
	return benchmarkVersionPrefix + industry
}

// Version returns the industry's current summary version, 0 if none was
// ever bumped.
func (c *BenchmarkCache) Version(ctx context.Context, industry string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(industry)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("benchmark cache version: %w", err)
	}
	return v, nil
}

// Get returns the summary cached under version and whether it was present.
func (c *BenchmarkCache) Get(ctx context.Context, industry string, version int64) (*models.BenchmarkSummary, bool, error) {
	val, err := c.client.Get(ctx, benchmarkKey(industry, version)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("benchmark cache get: %w", err)
	}

	var summary models.BenchmarkSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false, fmt.Errorf("benchmark cache decode: %w", err)
	}
	return &summary, true, nil
}

// Set stores summary under the version that was current before its records
// were read.
func (c *BenchmarkCache) Set(ctx context.Context, summary *models.BenchmarkSummary, version int64) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("benchmark cache encode: %w", err)
	}
	if err := c.client.Set(ctx, benchmarkKey(summary.Industry, version), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("benchmark cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the industry's version after a new record is appended.
// Entries under older versions are left to expire.
func (c *BenchmarkCache) Invalidate(ctx context.Context, industry string) error {
	if err := c.client.Incr(ctx, versionKey(industry)).Err(); err != nil {
		return fmt.Errorf("benchmark cache invalidate: %w", err)
	}
	return nil
}
