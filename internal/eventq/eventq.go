// Package eventq provides non-blocking channel sends and a small fan-out hub
// so slow subscribers never stall a round.
package eventq

import (
	"context"
	"sync"
)

// Offer performs a non-blocking send.
// It returns true when the value was sent and false when the channel is full
// or closed.
func Offer[T any](ch chan<- T, value T) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// OfferContext performs a non-blocking send that also respects context cancellation.
// It returns false if ctx is already done or if the channel is full.
func OfferContext[T any](ctx context.Context, ch chan<- T, value T) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	return Offer(ch, value)
}

// Hub fans values out to subscribers. Publish never blocks; a subscriber
// whose buffer is full misses the value and its drop count grows.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[int]*sub[T]
	next   int
	closed bool
}

type sub[T any] struct {
	ch      chan T
	dropped int
}

// NewHub returns an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]*sub[T])}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unsubscribes and closes the channel; it is safe to call more
// than once.
func (h *Hub[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	s := &sub[T]{ch: make(chan T, buffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = s
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(s.ch)
			}
			h.mu.Unlock()
		})
	}
}

// Publish offers v to every subscriber and returns how many received it.
func (h *Hub[T]) Publish(v T) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for _, s := range h.subs {
		if Offer(s.ch, v) {
			delivered++
		} else {
			s.dropped++
		}
	}
	return delivered
}

// Subscribers returns the current subscriber count.
func (h *Hub[T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns the total values missed by current subscribers.
func (h *Hub[T]) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, s := range h.subs {
		n += s.dropped
	}
	return n
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel and later publishes are no-ops.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		close(s.ch)
		delete(h.subs, id)
	}
}
