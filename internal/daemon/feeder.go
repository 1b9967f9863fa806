// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/playback"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Feeder reads raw frames from disk and keeps a session's queue topped up.
// A source is one file or a directory of files played in name order; every
// file is a concatenation of packed frames in the session's format.
type Feeder struct {
	session *playback.Session
	source  string
	loop    bool
	preroll int

	frameBytes int
	retry      *rate.Limiter
	wake       chan struct{}
	logger     zerolog.Logger

	started bool
	fed     uint64
}

// NewFeeder prepares a feeder. preroll frames are queued before the session
// is started.
func NewFeeder(s *playback.Session, source string, loop bool, preroll int) *Feeder {
	grain := s.Mode().GrainDuration().Duration()
	if grain <= 0 {
		grain = 40 * time.Millisecond
	}
	return &Feeder{
		session:    s,
		source:     source,
		loop:       loop,
		preroll:    max(preroll, 1),
		frameBytes: s.FrameBytes(),
		// Retries on a full queue are paced at twice the frame rate.
		retry:  rate.NewLimiter(rate.Every(grain/2), 1),
		wake:   make(chan struct{}, 1),
		logger: log.WithComponent("feeder").With().Str(log.FieldPath, source).Logger(),
	}
}

// Fed is the number of frames handed to the session.
func (f *Feeder) Fed() uint64 { return f.fed }

// Run feeds the source until it is exhausted (or forever with loop) or ctx
// ends. The session is started once the pre-roll is queued, or when the
// source runs out first.
func (f *Feeder) Run(ctx context.Context) error {
	if f.frameBytes <= 0 {
		return fmt.Errorf("%w: no frame size for %s/%s", ErrSourceInvalid, f.session.Mode(), f.session.PixelFormat())
	}
	paths, err := listSource(f.source)
	if err != nil {
		return err
	}

	cancel, err := f.session.Subscribe(f.onEvent)
	if err != nil {
		return fmt.Errorf("subscribe to playback events: %w", err)
	}
	defer cancel()

	f.logger.Info().
		Str(log.FieldEvent, "feeder.started").
		Int("files", len(paths)).
		Int("frame_bytes", f.frameBytes).
		Int("preroll", f.preroll).
		Bool("loop", f.loop).
		Msg("feeding frames")

	for pass := 1; ; pass++ {
		before := f.fed
		for _, p := range paths {
			if err := f.feedFile(ctx, p); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
		}
		if f.fed == before {
			return fmt.Errorf("%w: %s holds no complete frame of %d bytes", ErrSourceInvalid, f.source, f.frameBytes)
		}
		if !f.loop {
			break
		}
		f.logger.Debug().Int("pass", pass).Msg("source exhausted, looping")
	}

	if err := f.start(ctx); err != nil {
		return err
	}
	f.logger.Info().
		Str(log.FieldEvent, "feeder.finished").
		Uint64("frames", f.fed).
		Msg("source exhausted")
	return nil
}

func (f *Feeder) onEvent(ev playback.Event) {
	switch ev.Kind {
	case playback.EventPlayed:
		select {
		case f.wake <- struct{}{}:
		default:
		}
	case playback.EventError:
		f.logger.Warn().Err(ev.Err).Str(log.FieldOp, ev.Op).Msg("playback reported an error")
	}
}

func (f *Feeder) feedFile(ctx context.Context, path string) error {
	// #nosec G304 -- frame sources are chosen by the operator
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open frame source: %w", err)
	}
	defer func() { _ = file.Close() }()

	for {
		buf := make([]byte, f.frameBytes)
		n, err := io.ReadFull(file, buf)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			f.logger.Warn().
				Str(log.FieldPath, path).
				Int("trailing_bytes", n).
				Msg("dropping incomplete trailing frame")
			return nil
		case err != nil:
			return fmt.Errorf("read frame: %w", err)
		}

		if err := f.submit(ctx, buf); err != nil {
			return err
		}
		f.fed++
		if !f.started && f.fed >= uint64(f.preroll) {
			if err := f.start(ctx); err != nil {
				return err
			}
		}
	}
}

// submit retries on backpressure until the frame is queued or ctx ends.
func (f *Feeder) submit(ctx context.Context, buf []byte) error {
	for {
		_, err := f.session.SubmitFrame(ctx, buf)
		var full *playback.QueueFullError
		if !errors.As(err, &full) {
			return err
		}
		buf = full.Frame

		// A queue that fills before the pre-roll would never drain.
		if err := f.start(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.wake:
		case <-time.After(f.session.Mode().GrainDuration().Duration()):
		}
		if err := f.retry.Wait(ctx); err != nil {
			return err
		}
	}
}

func (f *Feeder) start(ctx context.Context) error {
	if f.started {
		return nil
	}
	if err := f.session.Start(ctx); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	f.started = true
	f.logger.Info().
		Str(log.FieldEvent, "feeder.preroll_done").
		Uint64("queued", f.fed).
		Msg("pre-roll queued, playback started")
	return nil
}

// listSource expands a file or directory into the files to play.
func listSource(source string) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceInvalid, err)
	}
	if !info.IsDir() {
		return []string{source}, nil
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceInvalid, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(source, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s has no frame files", ErrSourceInvalid, source)
	}
	return paths, nil
}
