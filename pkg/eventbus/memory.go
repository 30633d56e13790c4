package eventbus

import (
	"context"
	"errors"
	"sync"

	"hospital-recruitment-backend/internal/domain"
)

var ErrClosed = errors.New("eventbus: closed")

type memorySub struct {
	ch   chan domain.ApplicantEvent
	done chan struct{} // closed when the subscription ends
}

// MemoryBus delivers events to subscribers of this process only.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[int]memorySub
	nextID int
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]memorySub)}
}

func (b *MemoryBus) Publish(ctx context.Context, ev domain.ApplicantEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for _, sub := range b.subs {
		deliver(sub.ch, ev)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan domain.ApplicantEvent, func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	sub := memorySub{
		ch:   make(chan domain.ApplicantEvent, subscriberBuffer),
		done: make(chan struct{}),
	}
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.remove(id)
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.done:
		}
	}()

	return sub.ch, cancel, nil
}

// remove ends subscription id. Callers hold b.mu.
func (b *MemoryBus) remove(id int) {
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.done)
	close(sub.ch)
}

// Close ends every subscription.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id := range b.subs {
		b.remove(id)
	}
	return nil
}
