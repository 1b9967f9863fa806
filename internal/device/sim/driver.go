// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sim is a software output card. It enforces the same ownership and
// capability rules as hardware and produces frame intervals at the exact
// cadence of the bound display mode.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/playout/internal/device"
	"github.com/ManuGH/playout/internal/format"
	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/metrics"
	"github.com/rs/zerolog"
)

// Option configures a Driver.
type Option func(*Driver)

// WithDevices sets the number of simulated cards (indices 0..n-1).
func WithDevices(n int) Option {
	return func(d *Driver) { d.devices = n }
}

// WithUnsupportedFormats replaces the set of pixel formats the cards refuse.
func WithUnsupportedFormats(formats ...format.PixelFormat) Option {
	return func(d *Driver) {
		d.unsupported = make(map[format.PixelFormat]bool, len(formats))
		for _, f := range formats {
			d.unsupported[f] = true
		}
	}
}

// WithManualCadence disables the interval clock. Intervals then only happen
// through Output.Advance.
func WithManualCadence() Option {
	return func(d *Driver) { d.manual = true }
}

// WithLenientFrames accepts frames shorter than the packed frame size.
func WithLenientFrames() Option {
	return func(d *Driver) { d.lenient = true }
}

// Driver hands out simulated outputs, one owner per index.
type Driver struct {
	devices     int
	unsupported map[format.PixelFormat]bool
	manual      bool
	lenient     bool
	logger      zerolog.Logger

	mu     sync.Mutex
	owners map[int]*Output
}

// New returns a driver with one card that, like the hardware it stands in
// for, cannot drive 12-bit RGB.
func New(opts ...Option) *Driver {
	d := &Driver{
		devices: 1,
		unsupported: map[format.PixelFormat]bool{
			format.Format12BitRGB:   true,
			format.Format12BitRGBLE: true,
		},
		logger: log.WithComponent("device.sim"),
		owners: make(map[int]*Output),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Devices returns the number of simulated cards.
func (d *Driver) Devices() int { return d.devices }

// InUse reports whether index is currently acquired.
func (d *Driver) InUse(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.owners[index]
	return ok
}

// Supports reports whether the cards accept mode and pf.
func (d *Driver) Supports(mode format.DisplayMode, pf format.PixelFormat) bool {
	return mode.Known() && pf.Known() && !d.unsupported[pf]
}

// Acquire implements device.Driver.
func (d *Driver) Acquire(ctx context.Context, index int, mode format.DisplayMode, pf format.PixelFormat) (device.Output, error) {
	out, err := d.acquire(ctx, index, mode, pf)
	metrics.IncDeviceAcquire(acquireResult(err))
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str(log.FieldEvent, "device.acquire_failed").
			Int(log.FieldDeviceIndex, index).
			Str(log.FieldDisplayMode, mode.String()).
			Str(log.FieldPixelFormat, pf.String()).
			Msg("device acquire failed")
		return nil, err
	}
	d.logger.Info().
		Str(log.FieldEvent, "device.acquired").
		Int(log.FieldDeviceIndex, index).
		Str(log.FieldDisplayMode, mode.String()).
		Str(log.FieldPixelFormat, pf.String()).
		Msg("device acquired")
	return out, nil
}

func (d *Driver) acquire(ctx context.Context, index int, mode format.DisplayMode, pf format.PixelFormat) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= d.devices {
		return nil, &device.Error{Index: index, Op: "acquire", Err: device.ErrNoDevice}
	}
	if !d.Supports(mode, pf) {
		return nil, &device.Error{
			Index: index,
			Op:    "acquire",
			Err:   fmt.Errorf("%w: %s/%s", device.ErrUnsupported, mode, pf),
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.owners[index]; busy {
		return nil, &device.Error{Index: index, Op: "acquire", Err: device.ErrBusy}
	}
	out := newOutput(d, index, mode, pf)
	d.owners[index] = out
	return out, nil
}

func (d *Driver) release(index int, out *Output) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.owners[index] == out {
		delete(d.owners, index)
	}
}

func acquireResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, device.ErrBusy):
		return "busy"
	case errors.Is(err, device.ErrNoDevice):
		return "no_device"
	case errors.Is(err, device.ErrUnsupported):
		return "unsupported"
	default:
		return "error"
	}
}

var _ device.Driver = (*Driver)(nil)
