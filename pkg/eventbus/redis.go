package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBus shares events between every API instance through Redis pub/sub.
type RedisBus struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	subs   map[int]func()
	nextID int
	closed bool
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client, channel: Channel, subs: make(map[int]func())}
}

func (b *RedisBus) Publish(ctx context.Context, ev domain.ApplicantEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("eventbus: publish: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan domain.ApplicantEvent, func(), error) {
	if closedContext(ctx) {
		return nil, nil, ctx.Err()
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrClosed
	}
	b.mu.Unlock()

	pubsub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription to be confirmed so no event published afterwards is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("eventbus: subscribe: %w", err)
	}

	out := make(chan domain.ApplicantEvent, subscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	var id int
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(done)
			_ = pubsub.Close()
		})
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = pubsub.Close()
		return nil, nil, ErrClosed
	}
	id = b.nextID
	b.nextID++
	b.subs[id] = cancel
	b.mu.Unlock()

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.ApplicantEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.Log.Warn("eventbus: dropping malformed event", "error", err)
					continue
				}
				if !deliver(out, ev) {
					logger.Log.Debug("eventbus: subscriber lagging, event dropped", "record_id", ev.RecordID)
				}
			}
		}
	}()

	return out, cancel, nil
}

// Close ends every open subscription. The shared client is closed by pkg/redis.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancels := make([]func(), 0, len(b.subs))
	for _, cancel := range b.subs {
		cancels = append(cancels, cancel)
	}
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return nil
}
