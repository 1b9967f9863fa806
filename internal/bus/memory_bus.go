// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/metrics"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

const dropLogEvery = 100

var dropCount atomic.Uint64

// MemoryBus is an in-memory pub/sub. Every subscriber owns a buffered
// channel; Publish waits for room until its context ends, TryPublish never
// waits and drops instead.
type MemoryBus struct {
	buffer int

	mu     sync.RWMutex
	subs   map[string][]*memSub
	closed bool
}

// Option configures a MemoryBus.
type Option func(*MemoryBus)

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) Option {
	return func(b *MemoryBus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func NewMemoryBus(opts ...Option) *MemoryBus {
	b := &MemoryBus{buffer: DefaultBuffer, subs: make(map[string][]*memSub)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}

func recordDrop(topic, reason string) {
	metrics.IncBusDropReason(topic, reason)
	count := dropCount.Add(1)
	if count%dropLogEvery == 1 {
		logger := log.WithComponent("bus")
		logger.Warn().
			Str("topic", topic).
			Str("reason", reason).
			Uint64("dropped", count).
			Msg("memory bus dropped message")
	}
}

// Publish delivers msg to every subscriber of topic, waiting for buffer room
// until ctx ends.
func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, s := range b.subs[topic] {
		select {
		case s.ch <- msg:
			metrics.IncBusPublished(topic)
		case <-s.done:
			// subscriber is closing, skip it
		case <-ctx.Done():
			recordDrop(topic, publishDropReason(ctx.Err()))
			return fmt.Errorf("publish topic %q: %w", topic, ctx.Err())
		}
	}
	return nil
}

// TryPublish delivers msg to every subscriber with buffer room and drops it
// for the rest. It returns the number of subscribers that missed msg.
func (b *MemoryBus) TryPublish(topic string, msg Message) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	dropped := 0
	for _, s := range b.subs[topic] {
		select {
		case s.ch <- msg:
			metrics.IncBusPublished(topic)
		default:
			dropped++
			recordDrop(topic, "full")
		}
	}
	return dropped
}

func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &memSub{
		b:     b,
		topic: topic,
		ch:    make(chan Message, b.buffer),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.subs[topic] = append(b.subs[topic], s)
	return s, nil
}

// Subscribers returns the number of live subscriptions on topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close ends every subscription. Later publishes fail with ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.RLock()
	var all []*memSub
	for _, lst := range b.subs {
		all = append(all, lst...)
	}
	b.mu.RUnlock()
	for _, s := range all {
		s.signal()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, lst := range b.subs {
		for _, s := range lst {
			s.signal()
			close(s.ch)
		}
		delete(b.subs, topic)
	}
	return nil
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan Message

	doneOnce sync.Once
	done     chan struct{}
}

func (s *memSub) C() <-chan Message {
	return s.ch
}

func (s *memSub) signal() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Close unblocks pending publishers before taking the write lock, so a
// subscriber that stopped reading can always unsubscribe.
func (s *memSub) Close() error {
	s.signal()

	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	lst := s.b.subs[s.topic]
	out := lst[:0]
	found := false
	for _, c := range lst {
		if c == s {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		return nil // already closed, or ended by MemoryBus.Close
	}
	if len(out) == 0 {
		delete(s.b.subs, s.topic)
	} else {
		s.b.subs[s.topic] = out
	}
	close(s.ch)
	return nil
}

// Ensure compliance
var _ Bus = (*MemoryBus)(nil)
