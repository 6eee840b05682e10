package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	tagsKeyPrefix = "tags:user:"

	// TagVocabularyTTL is the TTL for a user's cached tag vocabulary.
	// The event worker refreshes the entry on every gallery mutation, so
	// the TTL only caps staleness when the pipeline falls behind.
	TagVocabularyTTL = time.Hour
)

// GetTags retrieves a user's cached tag vocabulary.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetTags(ctx context.Context, userID string) ([]string, error) {
	data, err := c.client.Get(ctx, tagsKeyPrefix+userID).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, ErrCacheMiss
	}

	return tags, nil
}

// SetTags stores a user's tag vocabulary.
func (c *Cache) SetTags(ctx context.Context, userID string, tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	if err := c.client.Set(ctx, tagsKeyPrefix+userID, data, TagVocabularyTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache tags: %w", err)
	}

	return nil
}

// DeleteTags removes a user's cached tag vocabulary.
func (c *Cache) DeleteTags(ctx context.Context, userID string) error {
	return c.client.Del(ctx, tagsKeyPrefix+userID).Err()
}
