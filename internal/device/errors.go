// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package device

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice signals that no device exists at the requested index.
	ErrNoDevice = errors.New("no device at index")
	// ErrBusy signals that another session owns the device.
	ErrBusy = errors.New("device busy")
	// ErrUnsupported signals that the device rejects the mode/format combination.
	ErrUnsupported = errors.New("unsupported mode or pixel format")
	// ErrRejected signals that the device refused a frame.
	ErrRejected = errors.New("frame rejected")
	// ErrReleased signals use of an output after Release.
	ErrReleased = errors.New("device released")
	// ErrAlreadyStarted signals a second Start on a running output.
	ErrAlreadyStarted = errors.New("device already started")
)

// Error attaches the device index and operation to a device failure.
type Error struct {
	Index int
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("device %d: %s: %v", e.Index, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
