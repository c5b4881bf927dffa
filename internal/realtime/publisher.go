// Package realtime publishes domain events for the broadcast layer.
// Subscribers (websocket gateways, push workers) live outside this service.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	EventMatchCreated = "match.created"
	EventMatchRemoved = "match.removed"
	EventChatMessages = "chat.messages"
)

type Event struct {
	Type    string    `json:"type"`
	MatchID uint64    `json:"matchId"`
	UserIDs []uint64  `json:"userIds"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type redisPublisher struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

// NewRedisPublisher publishes JSON events on a Redis pub/sub channel.
func NewRedisPublisher(rdb *redis.Client, channel string, log *slog.Logger) Publisher {
	if channel == "" {
		channel = "spark:events"
	}
	return &redisPublisher{rdb: rdb, channel: channel, log: log.With("service", "RealtimePublisher")}
}

func (p *redisPublisher) Publish(ctx context.Context, ev Event) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("realtime publisher not initialized")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.log.Debug("event published", "type", ev.Type, "match_id", ev.MatchID)
	return nil
}

type nopPublisher struct{}

// Nop drops every event.
func Nop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// PublishBestEffort publishes and only logs failures. Events are emitted
// after the owning transaction committed; losing one must not fail the request.
func PublishBestEffort(ctx context.Context, p Publisher, log *slog.Logger, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn("realtime publish failed", "type", ev.Type, "match_id", ev.MatchID, "err", err)
	}
}
