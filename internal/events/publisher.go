// Package events provides image mutation event capture and processing.
// Mutations are published to a Redis stream and consumed by a worker
// that keeps the tag vocabulary cache warm and invalidates cached
// analytics summaries.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pictoria/pictoria/internal/metrics"
)

const (
	// StreamKey is the Redis stream for image mutation events.
	StreamKey = "stream:image_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:image_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Mutation operation names carried in event payloads.
const (
	OpSave     = "save"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpFavorite = "favorite"
)

// ImageEventPayload is the compressed event format for the Redis stream.
type ImageEventPayload struct {
	UserID  string   `json:"uid"`
	ImageID int64    `json:"iid"`
	Op      string   `json:"op"`
	Tags    []string `json:"tg,omitempty"`
	At      int64    `json:"t"` // Unix milliseconds
}

// Publisher enqueues image mutation events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds a mutation event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event ImageEventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event ImageEventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish image event",
				"user_id", event.UserID,
				"op", event.Op,
				"error", err,
			)
			p.metrics.IncEventPublished("dropped")
			return
		}

		p.logger.Debug("image event published",
			"user_id", event.UserID,
			"op", event.Op,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished("success")
	}()
}

// ValidateImageEventPayload validates event payload fields before the
// worker acts on them.
func ValidateImageEventPayload(payload ImageEventPayload) error {
	if payload.UserID == "" {
		return fmt.Errorf("uid is required")
	}
	switch payload.Op {
	case OpSave, OpUpdate, OpDelete, OpFavorite:
	default:
		return fmt.Errorf("unknown op %q", payload.Op)
	}
	if payload.At <= 0 {
		return fmt.Errorf("t must be set")
	}
	return nil
}
