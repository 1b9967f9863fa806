// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package device defines the contract between the playback scheduler and a
// video output card. Implementations own the hardware (or a simulation of it);
// the scheduler only sees Driver and Output.
package device

import (
	"context"

	"github.com/ManuGH/playout/internal/format"
	"github.com/google/uuid"
)

// Token identifies one submitted frame across its delivery. The zero Token
// marks an interval in which the device repeated a held frame.
type Token string

// NoToken is reported for intervals that repeated the previous frame.
const NoToken Token = ""

// NewToken returns a fresh, unique delivery token.
func NewToken() Token {
	return Token(uuid.NewString())
}

// Frame is a raw buffer packed in the session's pixel format.
type Frame struct {
	Token Token
	Data  []byte
}

// ConsumedFunc is invoked by the device once per frame interval with the
// token of the frame that occupied it. It may run on any goroutine.
type ConsumedFunc func(Token)

// Driver grants exclusive access to output devices by index.
type Driver interface {
	// Acquire opens device index for the given mode and pixel format.
	// It fails with ErrNoDevice, ErrBusy or ErrUnsupported.
	Acquire(ctx context.Context, index int, mode format.DisplayMode, pf format.PixelFormat) (Output, error)
}

// Output is an acquired device.
type Output interface {
	// PushFrame hands the frame for the next interval to the device.
	PushFrame(f Frame) error
	// Hold tells the device to repeat the last frame for the next interval.
	Hold() error
	// Start begins the interval cadence. onConsumed is called once per interval.
	Start(onConsumed ConsumedFunc) error
	// Halt stops the cadence. No callback runs after Halt returns.
	Halt() error
	// Release frees the device. It is safe to call more than once and on an
	// output that was never started.
	Release() error
}
