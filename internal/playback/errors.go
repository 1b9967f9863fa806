// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration classifies constructor argument failures.
	ErrConfiguration = errors.New("invalid playback configuration")
	// ErrDeviceUnavailable classifies failures to acquire the output device.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrQueueFull is the backpressure signal of SubmitFrame.
	ErrQueueFull = errors.New("playback queue full")
	// ErrInvalidState classifies operations called in the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid playback state")
	// ErrDeviceFault classifies panics raised inside device calls.
	ErrDeviceFault = errors.New("device fault")
	// ErrEmptyFrame rejects zero-length frame buffers.
	ErrEmptyFrame = errors.New("empty frame")
)

// ConfigurationError reports an invalid constructor argument.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DeviceUnavailableError reports that the device at Index could not be
// acquired. It matches both ErrDeviceUnavailable and the device cause.
type DeviceUnavailableError struct {
	Index int
	Err   error
}

func (e *DeviceUnavailableError) Error() string {
	return fmt.Sprintf("%s: device %d: %v", ErrDeviceUnavailable, e.Index, e.Err)
}

func (e *DeviceUnavailableError) Unwrap() []error {
	return []error{ErrDeviceUnavailable, e.Err}
}

// QueueFullError returns the rejected buffer to the caller.
type QueueFullError struct {
	Depth int
	Frame []byte
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("%s: %d frames pending", ErrQueueFull, e.Depth)
}

func (e *QueueFullError) Unwrap() error { return ErrQueueFull }

// StateError reports an operation that the current state does not allow.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrInvalidState, e.Op, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
