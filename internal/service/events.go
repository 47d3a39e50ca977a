package service

import (
	"sync"

	"github.com/reasonrank/reasongraph/internal/domain"
)

const defaultEventHistory = 256

// EventBus fans PropagationEvents out to subscribers and keeps a bounded
// history for the audit endpoint. Slow subscribers drop events rather than
// stalling a propagation pass.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[int]chan domain.PropagationEvent
	nextID  int
	history []domain.PropagationEvent
	limit   int
}

func NewEventBus() *EventBus {
	return &EventBus{
		subs:  make(map[int]chan domain.PropagationEvent),
		limit: defaultEventHistory,
	}
}

// Subscribe returns a channel of propagation events and a cancel func.
func (b *EventBus) Subscribe() (<-chan domain.PropagationEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.PropagationEvent, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (b *EventBus) Publish(ev domain.PropagationEvent) {
	b.mu.Lock()
	b.history = append(b.history, ev)
	if len(b.history) > b.limit {
		b.history = b.history[len(b.history)-b.limit:]
	}
	subs := make([]chan domain.PropagationEvent, 0, len(b.subs))
	for _, ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Recent returns up to n most recent events, newest last.
func (b *EventBus) Recent(n int) []domain.PropagationEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.history) {
		n = len(b.history)
	}
	out := make([]domain.PropagationEvent, n)
	copy(out, b.history[len(b.history)-n:])
	return out
}
