// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bus is a small in-process publish/subscribe layer.
package bus

import (
	"context"
	"errors"
)

// Message is any value carried on a topic.
type Message any

// ErrClosed is returned by a bus that has been shut down.
var ErrClosed = errors.New("bus closed")

// Bus defines the publish/subscribe contract.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}

// Subscriber receives the messages of one topic. C is closed once the
// subscription ends.
type Subscriber interface {
	C() <-chan Message
	Close() error
}
