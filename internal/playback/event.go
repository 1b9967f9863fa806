// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"time"

	"github.com/ManuGH/playout/internal/device"
)

// EventKind enumerates the notifications a Session emits.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventError
	EventPlayed
	EventUnderrun
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventError:
		return "error"
	case EventPlayed:
		return "played"
	case EventUnderrun:
		return "underrun"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is a single notification. Token is set for played events and for
// errors tied to a specific frame; Op and Err only for errors.
type Event struct {
	Kind  EventKind
	Seq   uint64
	Token device.Token
	Op    string
	Err   error
	At    time.Time
}

// Handler consumes events. Each subscription runs its handler on a dedicated
// goroutine, in emission order.
type Handler func(Event)
