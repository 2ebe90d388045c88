// Package cache keeps computed portfolio summaries in Redis so the dashboard
// doesn't refold every loan on each request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/banquito/internal/domain"
)

const (
	summaryKeyPrefix = "portfolio:summary:"
	generationKey    = "portfolio:generation"
)

// SummaryCache stores portfolio summaries per calendar day. Entries are
// scoped to a generation: Invalidate starts a new one, so a summary computed
// before a write and stored after it is never served.
type SummaryCache interface {
	// Generation returns the current generation. Read it before computing
	// a summary and hand it to Set.
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, day time.Time) (*domain.PortfolioSummary, bool, error)
	Set(ctx context.Context, day time.Time, generation int64, summary *domain.PortfolioSummary) error
	Invalidate(ctx context.Context) error
}

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}
}

func summaryKey(generation int64, day time.Time) string {
	return fmt.Sprintf("%s%d:%s", summaryKeyPrefix, generation, day.Format("2006-01-02"))
}

func (c *RedisSummaryCache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *RedisSummaryCache) Get(ctx context.Context, day time.Time) (*domain.PortfolioSummary, bool, error) {
	generation, err := c.Generation(ctx)
	if err != nil {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, summaryKey(generation, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.PortfolioSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// a corrupt entry is a miss
		return nil, false, nil
	}

	return &summary, true, nil
}

// Set stores summary under generation. If a write invalidated the cache since
// generation was read, the entry lands in a retired generation and just expires.
func (c *RedisSummaryCache) Set(ctx context.Context, day time.Time, generation int64, summary *domain.PortfolioSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(generation, day), raw, c.ttl).Err()
}

// Invalidate retires every cached summary. Called after any write that changes loans or payments.
func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}
