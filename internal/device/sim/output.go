// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/playout/internal/device"
	"github.com/ManuGH/playout/internal/format"
	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/metrics"
	"github.com/rs/zerolog"
)

// Stats counts what an output has done since it was acquired.
type Stats struct {
	Intervals uint64 // frame intervals elapsed
	Consumed  uint64 // intervals that showed a new frame
	Repeats   uint64 // intervals that repeated the held frame
	Holds     uint64 // Hold calls
	Rejected  uint64 // PushFrame calls refused
	Truncated uint64 // frames longer than the packed frame size
	Late      uint64 // intervals that fired after their deadline
}

// Output is one acquired simulated card.
type Output struct {
	driver     *Driver
	index      int
	mode       format.DisplayMode
	pf         format.PixelFormat
	frameBytes int
	logger     zerolog.Logger

	// tickMu is held for the whole of an interval, callback included.
	tickMu sync.Mutex

	mu         sync.Mutex
	showing    []byte
	pending    device.Frame
	hasPending bool
	onConsumed device.ConsumedFunc
	started    bool
	halted     bool
	released   bool
	stats      Stats
	stop       chan struct{}
	done       chan struct{}
}

func newOutput(d *Driver, index int, mode format.DisplayMode, pf format.PixelFormat) *Output {
	return &Output{
		driver:     d,
		index:      index,
		mode:       mode,
		pf:         pf,
		frameBytes: format.FrameBytes(mode, pf),
		logger: d.logger.With().
			Int(log.FieldDeviceIndex, index).
			Str(log.FieldDisplayMode, mode.String()).
			Str(log.FieldPixelFormat, pf.String()).
			Logger(),
	}
}

// FrameBytes is the packed frame size the output expects.
func (o *Output) FrameBytes() int { return o.frameBytes }

// Stats returns a snapshot of the output counters.
func (o *Output) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// PushFrame implements device.Output.
func (o *Output) PushFrame(f device.Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.released {
		return &device.Error{Index: o.index, Op: "push", Err: device.ErrReleased}
	}
	if o.hasPending {
		o.stats.Rejected++
		return &device.Error{Index: o.index, Op: "push", Err: fmt.Errorf("%w: frame slot occupied", device.ErrRejected)}
	}
	data := f.Data
	if len(data) < o.frameBytes && !o.driver.lenient {
		o.stats.Rejected++
		return &device.Error{
			Index: o.index,
			Op:    "push",
			Err:   fmt.Errorf("%w: short frame %d < %d bytes", device.ErrRejected, len(data), o.frameBytes),
		}
	}
	if len(data) > o.frameBytes {
		data = data[:o.frameBytes]
		o.stats.Truncated++
	}
	o.pending = device.Frame{Token: f.Token, Data: data}
	o.hasPending = true
	return nil
}

// Hold implements device.Output. An interval without a pending frame repeats
// the frame on screen, so Hold only has to be recorded.
func (o *Output) Hold() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.released {
		return &device.Error{Index: o.index, Op: "hold", Err: device.ErrReleased}
	}
	o.stats.Holds++
	return nil
}

// Start implements device.Output.
func (o *Output) Start(onConsumed device.ConsumedFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.released:
		return &device.Error{Index: o.index, Op: "start", Err: device.ErrReleased}
	case o.started:
		return &device.Error{Index: o.index, Op: "start", Err: device.ErrAlreadyStarted}
	case onConsumed == nil:
		return &device.Error{Index: o.index, Op: "start", Err: fmt.Errorf("nil consumed callback")}
	}
	o.onConsumed = onConsumed
	o.started = true
	if !o.driver.manual {
		o.stop = make(chan struct{})
		o.done = make(chan struct{})
		go o.run(o.stop, o.done)
	}
	o.logger.Debug().Str(log.FieldEvent, "device.started").Msg("output cadence started")
	return nil
}

// Advance runs one interval synchronously. It is a no-op unless the output
// was created with WithManualCadence and is started.
func (o *Output) Advance() {
	if !o.driver.manual {
		return
	}
	o.tickMu.Lock()
	defer o.tickMu.Unlock()
	o.interval()
}

// Halt implements device.Output. It must not be called from the consumed
// callback.
func (o *Output) Halt() error {
	o.mu.Lock()
	if !o.started || o.halted {
		o.halted = true
		o.mu.Unlock()
		return nil
	}
	o.halted = true
	stop, done := o.stop, o.done
	o.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	// Wait out an interval that is still running its callback.
	o.tickMu.Lock()
	o.tickMu.Unlock() //nolint:staticcheck // barrier

	o.logger.Debug().Str(log.FieldEvent, "device.halted").Msg("output cadence halted")
	return nil
}

// Release implements device.Output.
func (o *Output) Release() error {
	if err := o.Halt(); err != nil {
		return err
	}
	o.mu.Lock()
	if o.released {
		o.mu.Unlock()
		return nil
	}
	o.released = true
	o.hasPending = false
	o.pending = device.Frame{}
	o.showing = nil
	stats := o.stats
	o.mu.Unlock()

	o.driver.release(o.index, o)
	o.logger.Info().
		Str(log.FieldEvent, "device.released").
		Uint64("intervals", stats.Intervals).
		Uint64("repeats", stats.Repeats).
		Msg("device released")
	return nil
}

// run drives intervals at the start offsets of the mode's grain, so timer
// jitter never accumulates into drift.
func (o *Output) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	grain := o.mode.GrainDuration()
	epoch := time.Now()
	timer := time.NewTimer(grain.Elapsed(1))
	defer timer.Stop()

	for n := uint64(1); ; n++ {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		o.tickMu.Lock()
		o.interval()
		o.tickMu.Unlock()

		wait := grain.Elapsed(n+1) - time.Since(epoch)
		if wait < 0 {
			o.mu.Lock()
			o.stats.Late++
			o.mu.Unlock()
			metrics.IncDeviceLate(o.index)
			wait = 0
		}
		timer.Reset(wait)
	}
}

// interval shows the pending frame, or repeats the one on screen, and
// reports the result to the callback. Callers hold tickMu.
func (o *Output) interval() {
	o.mu.Lock()
	if !o.started || o.halted || o.released {
		o.mu.Unlock()
		return
	}
	token := device.NoToken
	consumed := o.hasPending
	if consumed {
		o.showing = o.pending.Data
		token = o.pending.Token
		o.pending = device.Frame{}
		o.hasPending = false
		o.stats.Consumed++
	} else {
		o.stats.Repeats++
	}
	o.stats.Intervals++
	cb := o.onConsumed
	o.mu.Unlock()

	metrics.IncDeviceInterval(o.index, consumed)
	cb(token)
}

var _ device.Output = (*Output)(nil)
