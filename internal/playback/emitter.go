// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"context"
	"errors"
	"time"

	"github.com/ManuGH/playout/internal/bus"
	"github.com/ManuGH/playout/internal/log"
)

// Subscribe registers handler for every event emitted from now on. Handlers
// run on their own goroutine and never block the delivery path: a handler
// that lags more than the event buffer loses events, except for done which
// Stop waits for up to the done timeout. The returned func cancels the
// subscription; it is safe to call more than once, including from inside
// handler.
func (s *Session) Subscribe(handler Handler) (func(), error) {
	if handler == nil {
		return nil, errors.New("playback: nil event handler")
	}
	sub, err := s.events.Subscribe(context.Background(), eventsTopic)
	if err != nil {
		if errors.Is(err, bus.ErrClosed) {
			return nil, &StateError{Op: "subscribe", State: StateStopped}
		}
		return nil, err
	}

	go s.dispatch(sub, handler)
	return func() { _ = sub.Close() }, nil
}

func (s *Session) dispatch(sub bus.Subscriber, handler Handler) {
	for msg := range sub.C() {
		ev, ok := msg.(Event)
		if !ok {
			continue
		}
		s.invoke(handler, ev)
	}
}

func (s *Session) invoke(handler Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str(log.FieldEvent, "subscriber.panic").
				Str("kind", ev.Kind.String()).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()
	handler(ev)
}

// emit publishes ev without waiting on slow subscribers.
func (s *Session) emit(ev Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	ev.Seq = s.seq.Add(1)
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	s.events.TryPublish(eventsTopic, ev)
}

// emitDone hands the done event to every subscriber, waiting for buffer
// room until the done timeout passes.
func (s *Session) emitDone(ctx context.Context) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	ev := Event{Kind: EventDone, Seq: s.seq.Add(1), At: time.Now()}

	// A canceled caller context must not cost subscribers their done event.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.doneTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, eventsTopic, ev); err != nil {
		s.logger.Warn().
			Err(err).
			Str(log.FieldEvent, "session.done_dropped").
			Msg("done event not delivered to every subscriber")
	}
}
