// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playback schedules raw video frames onto an output device.
//
// A Session binds one device index to a display mode and pixel format. The
// application submits frames into a bounded queue; once started, the device
// calls back once per frame interval and the session answers each callback
// with the next queued frame, or with a hold when the queue ran dry. Outcomes
// are reported as events (played, underrun, error, done) to any number of
// subscribers.
package playback

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/playout/internal/bus"
	"github.com/ManuGH/playout/internal/device"
	"github.com/ManuGH/playout/internal/format"
	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/metrics"
	"github.com/ManuGH/playout/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const eventsTopic = "playback.events"

// Session is one playback binding of a device index, mode and pixel format.
type Session struct {
	id     string
	index  int
	mode   format.DisplayMode
	pf     format.PixelFormat
	driver device.Driver
	opts   options
	logger zerolog.Logger
	tracer trace.Tracer
	events *bus.MemoryBus
	seq    atomic.Uint64
	// emitMu keeps sequence numbers in publish order.
	emitMu sync.Mutex

	// opMu serializes lifecycle operations (initialize, start, stop).
	opMu sync.Mutex
	// deliverMu is held for the whole of a delivery callback so Stop can wait
	// out the one in flight.
	deliverMu sync.Mutex

	mu        sync.Mutex
	state     State
	stopping  bool
	primed    bool
	output    device.Output
	queue     *frameQueue
	submitted uint64
	delivered uint64
	underruns uint64
	queueFull uint64
	rejected  uint64
	errCount  uint64
	degraded  bool
	lastErr   error
}

// New validates its arguments and returns an uninitialized session. The
// device is not touched until the first operation that needs it.
func New(driver device.Driver, index int, mode format.DisplayMode, pf format.PixelFormat, opts ...Option) (*Session, error) {
	o := options{
		queueDepth:  DefaultQueueDepth,
		eventBuffer: DefaultEventBuffer,
		doneTimeout: DefaultDoneTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case driver == nil:
		return nil, &ConfigurationError{Field: "driver", Reason: "must not be nil"}
	case index < 0:
		return nil, &ConfigurationError{Field: "deviceIndex", Reason: fmt.Sprintf("must be non-negative, got %d", index)}
	case format.Code(mode).IsZero():
		return nil, &ConfigurationError{Field: "displayMode", Reason: "zero code"}
	case format.Code(pf).IsZero():
		return nil, &ConfigurationError{Field: "pixelFormat", Reason: "zero code"}
	case o.queueDepth < 1:
		return nil, &ConfigurationError{Field: "queueDepth", Reason: fmt.Sprintf("must be at least 1, got %d", o.queueDepth)}
	case o.eventBuffer < 1:
		return nil, &ConfigurationError{Field: "eventBuffer", Reason: fmt.Sprintf("must be at least 1, got %d", o.eventBuffer)}
	}

	id := o.sessionID
	if id == "" {
		id = uuid.NewString()
	}
	logger := log.WithComponent("playback")
	if o.logger != nil {
		logger = *o.logger
	}
	tracer := o.tracer
	if tracer == nil {
		tracer = telemetry.Tracer("playout/playback")
	}

	s := &Session{
		id:     id,
		index:  index,
		mode:   mode,
		pf:     pf,
		driver: driver,
		opts:   o,
		logger: logger.With().
			Str(log.FieldSessionID, id).
			Int(log.FieldDeviceIndex, index).
			Str(log.FieldDisplayMode, mode.String()).
			Str(log.FieldPixelFormat, pf.String()).
			Logger(),
		tracer: tracer,
		events: bus.NewMemoryBus(bus.WithBuffer(o.eventBuffer)),
		state:  StateUninitialized,
		queue:  newFrameQueue(o.queueDepth),
	}
	s.logger.Debug().
		Str(log.FieldEvent, "session.created").
		Int(log.FieldQueueLimit, o.queueDepth).
		Msg("playback session created")
	return s, nil
}

// ID is the unique session identifier used in logs and traces.
func (s *Session) ID() string { return s.id }

// DeviceIndex is the bound device index.
func (s *Session) DeviceIndex() int { return s.index }

// Mode is the bound display mode.
func (s *Session) Mode() format.DisplayMode { return s.mode }

// PixelFormat is the bound pixel format.
func (s *Session) PixelFormat() format.PixelFormat { return s.pf }

// FrameBytes is the packed size of one frame in the bound mode and format.
func (s *Session) FrameBytes() int { return format.FrameBytes(s.mode, s.pf) }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnsureInitialized acquires the device if the session is uninitialized. It
// is idempotent. A failed acquisition leaves the session uninitialized,
// emits an error event and returns a *DeviceUnavailableError.
func (s *Session) EnsureInitialized(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.ensureInitialized(ctx)
}

// ensureInitialized requires opMu.
func (s *Session) ensureInitialized(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady, StateRunning:
		s.mu.Unlock()
		return nil
	case StateUninitialized:
		s.transitionLocked(trInitRequested)
		s.mu.Unlock()
	default:
		st := s.state
		s.mu.Unlock()
		return &StateError{Op: "initialize", State: st}
	}

	ctx, span := s.startSpan(ctx, "playback.initialize")
	begin := time.Now()

	var out device.Output
	err := s.safeCall("acquire", func() error {
		var aerr error
		out, aerr = s.driver.Acquire(ctx, s.index, s.mode, s.pf)
		return aerr
	})
	if err == nil && out == nil {
		err = fmt.Errorf("driver returned no output")
	}
	metrics.ObservePlaybackOp("initialize", err, time.Since(begin))

	if err != nil {
		derr := &DeviceUnavailableError{Index: s.index, Err: err}
		s.mu.Lock()
		s.transitionLocked(trInitFailed)
		s.mu.Unlock()
		telemetry.EndSpan(span, derr, "device_unavailable")
		s.fail(ctx, "initialize", device.NoToken, derr)
		return derr
	}

	s.mu.Lock()
	s.output = out
	s.transitionLocked(trInitSucceeded)
	s.mu.Unlock()
	telemetry.EndSpan(span, nil, "")
	return nil
}

// SubmitFrame queues buf for delivery and returns its delivery token. The
// session takes ownership of buf. An uninitialized session is initialized
// first. When the queue is full the call fails immediately with a
// *QueueFullError carrying buf; earlier frames are never dropped to make room.
func (s *Session) SubmitFrame(ctx context.Context, buf []byte) (device.Token, error) {
	if len(buf) == 0 {
		return device.NoToken, ErrEmptyFrame
	}

	if s.State() == StateUninitialized {
		s.opMu.Lock()
		err := s.ensureInitialized(ctx)
		s.opMu.Unlock()
		if err != nil {
			return device.NoToken, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping || (s.state != StateReady && s.state != StateRunning) {
		return device.NoToken, &StateError{Op: "submit", State: s.state}
	}
	if s.queue.full() {
		s.queueFull++
		metrics.IncQueueFull(s.index)
		return device.NoToken, &QueueFullError{Depth: s.queue.Len(), Frame: buf}
	}

	tok := device.NewToken()
	s.queue.push(device.Frame{Token: tok, Data: buf})
	s.submitted++
	metrics.IncFrameSubmitted(s.index)
	metrics.SetQueueDepth(s.index, s.queue.Len(), s.queue.highWater)
	return tok, nil
}

// Start primes the device with the head of the queue (or a hold when the
// queue is empty) and starts the frame cadence. It is valid only from Ready;
// on a running session it is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	switch s.state {
	case StateRunning:
		s.mu.Unlock()
		return nil
	case StateReady:
	default:
		st := s.state
		s.mu.Unlock()
		return &StateError{Op: "start", State: st}
	}
	out := s.output
	primed := s.primed
	var first device.Frame
	var haveFirst bool
	if !primed {
		first, haveFirst = s.queue.pop()
	}
	s.mu.Unlock()

	ctx, span := s.startSpan(ctx, "playback.start")
	begin := time.Now()

	var err error
	switch {
	case primed:
	case haveFirst:
		err = s.safeCall("push", func() error { return out.PushFrame(first) })
	default:
		err = s.safeCall("hold", out.Hold)
	}
	if err != nil && haveFirst {
		s.mu.Lock()
		s.queue.pushFront(first)
		s.mu.Unlock()
	}

	if err == nil {
		// Running before the device starts, so the first callback is not
		// mistaken for a late one.
		s.mu.Lock()
		s.primed = true
		s.transitionLocked(trStartApplied)
		s.mu.Unlock()

		err = s.safeCall("start", func() error { return out.Start(s.onConsumed) })
		if err != nil {
			s.mu.Lock()
			s.transitionLocked(trStartFailed)
			s.mu.Unlock()
		}
	}
	metrics.ObservePlaybackOp("start", err, time.Since(begin))

	if err != nil {
		err = fmt.Errorf("start playback on device %d: %w", s.index, err)
		telemetry.EndSpan(span, err, "device")
		s.fail(ctx, "start", first.Token, err)
		return err
	}
	telemetry.EndSpan(span, nil, "")

	s.logger.Info().
		Str(log.FieldEvent, "session.started").
		Str(log.FieldFrameRate, s.mode.GrainDuration().String()).
		Bool("primed_with_frame", haveFirst || primed).
		Msg("playback started")

	if !haveFirst && !primed {
		s.underrun()
	}
	return nil
}

// Stop halts the device cadence, waits for any delivery callback in flight,
// releases the device, discards undelivered frames and emits exactly one done
// event. It always succeeds; release failures are logged and counted. Stop
// on a stopped session is a no-op.
func (s *Session) Stop(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	out := s.output
	s.mu.Unlock()

	ctx, span := s.startSpan(ctx, "playback.stop")
	begin := time.Now()

	var releaseErr error
	if out != nil {
		if err := s.safeCall("halt", out.Halt); err != nil {
			s.logger.Warn().Err(err).Str(log.FieldEvent, "device.halt_failed").Msg("device halt failed")
		}
	}

	// Wait for the callback in flight; later ones see stopping and return.
	s.deliverMu.Lock()
	s.deliverMu.Unlock() //nolint:staticcheck // barrier

	if out != nil {
		if err := s.safeCall("release", out.Release); err != nil {
			releaseErr = err
			metrics.IncDeviceReleaseFailure(s.index)
			s.logger.Error().
				Err(err).
				Str(log.FieldEvent, "device.release_failed").
				Msg("device release failed")
		}
	}

	s.mu.Lock()
	discarded := s.queue.clear()
	s.output = nil
	s.transitionLocked(trStopRequested)
	delivered := s.delivered
	metrics.SetQueueDepth(s.index, 0, s.queue.highWater)
	s.mu.Unlock()

	metrics.ObservePlaybackOp("stop", releaseErr, time.Since(begin))
	span.SetAttributes(telemetry.PlaybackAttributes(s.id, s.index, StateStopped.String())...)
	telemetry.EndSpan(span, releaseErr, "release")

	s.logger.Info().
		Str(log.FieldEvent, "session.stopped").
		Int("discarded", discarded).
		Uint64("delivered", delivered).
		Msg("playback stopped")

	s.emitDone(ctx)
	_ = s.events.Close()
}

// onConsumed is the device callback, one call per frame interval.
func (s *Session) onConsumed(tok device.Token) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.state != StateRunning || s.stopping {
		s.mu.Unlock()
		return
	}
	out := s.output
	if tok != device.NoToken {
		s.delivered++
	}
	next, haveNext := s.queue.pop()
	metrics.SetQueueDepth(s.index, s.queue.Len(), s.queue.highWater)
	s.mu.Unlock()

	if tok != device.NoToken {
		metrics.IncFramePlayed(s.index)
		s.emit(Event{Kind: EventPlayed, Token: tok})
	}

	if haveNext {
		err := s.safeCall("push", func() error { return out.PushFrame(next) })
		if err == nil {
			return
		}
		s.mu.Lock()
		s.rejected++
		s.degraded = true
		s.mu.Unlock()
		s.fail(context.Background(), "deliver", next.Token, fmt.Errorf("push frame: %w", err))
		// The rejected frame is gone; keep the output alive on the held frame.
		if herr := s.safeCall("hold", out.Hold); herr != nil {
			s.fail(context.Background(), "hold", device.NoToken, herr)
		}
		return
	}

	if err := s.safeCall("hold", out.Hold); err != nil {
		s.fail(context.Background(), "hold", device.NoToken, err)
	}
	s.underrun()
}

func (s *Session) underrun() {
	s.mu.Lock()
	s.underruns++
	s.mu.Unlock()
	metrics.IncUnderrun(s.index)
	s.emit(Event{Kind: EventUnderrun})
}

// safeCall turns a panic inside a device call into an ErrDeviceFault error.
func (s *Session) safeCall(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrDeviceFault, op, r)
		}
	}()
	return fn()
}

// fail records err and reports it as an error event.
func (s *Session) fail(ctx context.Context, op string, tok device.Token, err error) {
	s.mu.Lock()
	s.errCount++
	s.lastErr = err
	s.mu.Unlock()

	metrics.IncPlaybackError(s.index, op)
	logger := log.WithContext(ctx, s.logger)
	ev := logger.Error().Err(err).Str(log.FieldEvent, "session.error").Str(log.FieldOp, op)
	if tok != device.NoToken {
		ev = ev.Str(log.FieldToken, string(tok))
	}
	ev.Msg("playback error")

	s.emit(Event{Kind: EventError, Op: op, Token: tok, Err: err})
}

// transitionLocked applies ev to the state machine; s.mu must be held.
func (s *Session) transitionLocked(ev trigger) {
	from := s.state
	to, ok := transitionFor(from, ev)
	if !ok {
		s.logger.Error().
			Str(log.FieldEvent, "session.illegal_transition").
			Str(log.FieldOldState, from.String()).
			Str("trigger", string(ev)).
			Msg("illegal state transition ignored")
		return
	}
	s.state = to
	metrics.IncStateTransition(from.String(), to.String())
	s.logger.Debug().
		Str(log.FieldEvent, "session.state_changed").
		Str(log.FieldOldState, from.String()).
		Str(log.FieldNewState, to.String()).
		Msg("state changed")
}

func (s *Session) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.ContextWithSessionID(ctx, s.id)
	attrs := telemetry.PlaybackAttributes(s.id, s.index, "")
	attrs = append(attrs, telemetry.SignalAttributes(
		s.mode.String(),
		s.pf.String(),
		s.mode.Width(),
		s.mode.Height(),
		s.mode.GrainDuration().String(),
		s.mode.Interlaced(),
	)...)
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
