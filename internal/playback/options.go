// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultQueueDepth mirrors the seven-frame ring most output cards keep.
	DefaultQueueDepth = 7
	// DefaultEventBuffer is the per-subscriber event backlog.
	DefaultEventBuffer = 256
	// DefaultDoneTimeout bounds how long Stop waits for slow subscribers to
	// take the done event.
	DefaultDoneTimeout = time.Second
)

type options struct {
	queueDepth  int
	eventBuffer int
	doneTimeout time.Duration
	logger      *zerolog.Logger
	tracer      trace.Tracer
	sessionID   string
}

// Option configures a Session.
type Option func(*options)

// WithQueueDepth bounds the number of pending frames.
func WithQueueDepth(n int) Option {
	return func(o *options) { o.queueDepth = n }
}

// WithEventBuffer sets how many events a slow subscriber may lag behind
// before it starts losing them.
func WithEventBuffer(n int) Option {
	return func(o *options) { o.eventBuffer = n }
}

// WithDoneTimeout bounds how long Stop waits to hand out the done event.
func WithDoneTimeout(d time.Duration) Option {
	return func(o *options) { o.doneTimeout = d }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(o *options) { o.sessionID = id }
}
