// Package redisevents publishes account lifecycle events to a Redis stream.
package redisevents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/core"
	"github.com/redis/go-redis/v9"
)

const DefaultStream = "accounts:events"

// StreamAdder is the part of a redis client the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type Publisher struct {
	client StreamAdder
	stream string
	maxLen int64
}

type Option func(*Publisher)

func WithStream(stream string) Option {
	return func(p *Publisher) {
		if trimmed := strings.TrimSpace(stream); trimmed != "" {
			p.stream = trimmed
		}
	}
}

// WithMaxLen caps the stream with approximate trimming. Zero disables it.
func WithMaxLen(maxLen int64) Option {
	return func(p *Publisher) {
		if maxLen >= 0 {
			p.maxLen = maxLen
		}
	}
}

func NewPublisher(client StreamAdder, opts ...Option) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redisevents: client is required")
	}
	publisher := &Publisher{client: client, stream: DefaultStream}
	for _, opt := range opts {
		if opt != nil {
			opt(publisher)
		}
	}
	return publisher, nil
}

// NewClient opens a redis client and pings it.
func NewClient(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisevents: connect: %w", err)
	}
	return rdb, nil
}

type envelope struct {
	Name       string         `json:"name"`
	AccountID  string         `json:"account_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, event core.Event) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("redisevents: publisher is not configured")
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(envelope{
		Name:       event.Name,
		AccountID:  event.AccountID,
		UserID:     event.UserID,
		OccurredAt: occurredAt,
		Payload:    event.Payload,
	})
	if err != nil {
		return fmt.Errorf("redisevents: marshal %s: %w", event.Name, err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":  event.Name,
			"event": body,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redisevents: publish %s: %w", event.Name, err)
	}
	return nil
}

var _ core.EventPublisher = (*Publisher)(nil)
