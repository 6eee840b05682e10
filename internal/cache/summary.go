package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pictoria/pictoria/internal/model"
)

// Cache key prefixes and TTLs for analytics summaries.
const (
	summaryKeyPrefix = "analytics:summary:"
	summarySetPrefix = "analytics:keys:"

	// SummaryTTL bounds how stale a cached summary can get even if
	// invalidation events are lost.
	SummaryTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// SummaryCacheKey builds the cache key for one user and filter hash.
func SummaryCacheKey(userID, filterHash string) string {
	return summaryKeyPrefix + userID + ":" + filterHash
}

// GetSummary retrieves a cached analytics summary.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetSummary(ctx context.Context, userID, filterHash string) (*model.AnalyticsSummary, error) {
	data, err := c.client.Get(ctx, SummaryCacheKey(userID, filterHash)).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var summary model.AnalyticsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}

	return &summary, nil
}

// SetSummary caches a computed summary and tracks its key in the user's
// key set so invalidation never needs to scan the keyspace.
func (c *Cache) SetSummary(ctx context.Context, userID, filterHash string, summary *model.AnalyticsSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	key := SummaryCacheKey(userID, filterHash)
	setKey := summarySetPrefix + userID

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, SummaryTTL)
	pipe.SAdd(ctx, setKey, key)
	pipe.Expire(ctx, setKey, SummaryTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}

	return nil
}

// InvalidateSummaries drops every cached summary for a user. Called
// after any mutation of the user's gallery.
func (c *Cache) InvalidateSummaries(ctx context.Context, userID string) error {
	setKey := summarySetPrefix + userID

	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read summary key set: %w", err)
	}

	keys = append(keys, setKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summaries: %w", err)
	}

	return nil
}
