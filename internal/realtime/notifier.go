package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"trustlist_backend/config"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope published on every state change: new listings,
// cart mutations, escrow transitions, review resolutions.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notifier publishes fire-and-forget events. No delivery guarantee; a
// failed publish is logged and swallowed.
type Notifier interface {
	Publish(ctx context.Context, eventType string, payload interface{})
}

// RedisNotifier publishes events on a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(cfg config.RedisConfig) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	return &RedisNotifier{client: client, channel: cfg.Channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, eventType string, payload interface{}) {
	event := Event{Type: eventType, Payload: payload, Timestamp: time.Now()}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode event %s: %v", eventType, err)
		return
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		log.Printf("Failed to publish event %s: %v", eventType, err)
	}
}

// Close releases the underlying Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// LogNotifier is the fallback publisher used when Redis is disabled.
type LogNotifier struct{}

func (LogNotifier) Publish(_ context.Context, eventType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	log.Printf("event %s: %s", eventType, data)
}
