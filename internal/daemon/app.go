// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires a playback session to its frame source, the status
// API and the config watcher, and owns their lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/playout/internal/api"
	"github.com/ManuGH/playout/internal/config"
	"github.com/ManuGH/playout/internal/health"
	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/playback"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

// Option configures an App.
type Option func(*App)

// WithConfigHolder enables live reload (file watch and SIGHUP).
func WithConfigHolder(h *config.Holder) Option {
	return func(a *App) { a.holder = h }
}

// WithListener serves the API on an existing listener instead of
// binding ListenAddr.
func WithListener(l net.Listener) Option {
	return func(a *App) { a.listener = l }
}

// WithReloadSignal replaces SIGHUP. A nil signal disables signal reloads.
func WithReloadSignal(sig os.Signal) Option {
	return func(a *App) { a.reloadSignal = sig }
}

// App owns the long-lived runtime: feeding, serving, reloading.
type App struct {
	logger  zerolog.Logger
	session *playback.Session
	cfg     config.AppConfig
	holder  *config.Holder
	health  *health.Manager

	listener        net.Listener
	reloadSignal    os.Signal
	shutdownTimeout time.Duration

	feeder *Feeder
}

// NewApp creates the orchestrator for one session.
func NewApp(logger zerolog.Logger, session *playback.Session, cfg config.AppConfig, opts ...Option) *App {
	a := &App{
		logger:          logger,
		session:         session,
		cfg:             cfg,
		health:          health.NewManager(cfg.Version),
		reloadSignal:    syscall.SIGHUP,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.health.RegisterChecker(health.CheckFunc{Label: "playback", Fn: a.checkPlayback})
	return a
}

// Health exposes the probe manager.
func (a *App) Health() *health.Manager { return a.health }

// Run initializes the device, starts all subsystems and blocks until ctx
// is cancelled or one of them fails. The session is stopped before Run
// returns.
func (a *App) Run(ctx context.Context) error {
	if a.session == nil {
		return ErrMissingSession
	}
	if err := a.session.EnsureInitialized(ctx); err != nil {
		a.session.Stop(context.WithoutCancel(ctx))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		// The watcher is best-effort: startup must not fail without it.
		if err := a.holder.Watch(gctx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		updates := make(chan config.AppConfig, 1)
		a.holder.Subscribe(updates)
		g.Go(func() error { return a.applyLoop(gctx, updates) })

		if a.reloadSignal != nil {
			g.Go(func() error { return a.signalLoop(gctx) })
		}
	}

	if a.listener != nil || a.cfg.ListenAddr != "" {
		a.serve(gctx, g)
	}

	// Playback keeps the output up after a finite source runs dry, so both
	// branches hold until shutdown once they succeed.
	if a.cfg.Source != "" {
		a.feeder = NewFeeder(a.session, a.cfg.Source, a.cfg.Loop, a.cfg.Preroll)
		g.Go(func() error { return holdUntilDone(gctx, a.feeder.Run(gctx)) })
	} else {
		// Nothing to play: bring the output up holding black.
		g.Go(func() error {
			a.logger.Info().Str(log.FieldEvent, "playback.idle").Msg("no source configured, output holds")
			return holdUntilDone(gctx, a.session.Start(gctx))
		})
	}

	if a.cfg.StatsFile != "" {
		g.Go(func() error {
			return runStatsWriter(gctx, a.cfg.StatsFile, a.cfg.StatsInterval, a.session.Stats)
		})
	}

	err := g.Wait()
	if a.holder != nil {
		a.holder.Wait()
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
	defer cancel()
	a.session.Stop(stopCtx)

	if a.cfg.StatsFile != "" {
		if werr := writeStatsFile(a.cfg.StatsFile, a.session.Stats()); werr != nil {
			a.logger.Warn().Err(werr).Str(log.FieldEvent, "stats.final_write_failed").Msg("final stats snapshot not written")
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// holdUntilDone returns err immediately, otherwise blocks until ctx ends.
func holdUntilDone(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (a *App) serve(ctx context.Context, g *errgroup.Group) {
	srv := &http.Server{
		Addr: a.cfg.ListenAddr,
		Handler: api.New(api.Config{
			Version:        a.cfg.Version,
			Stats:          a.stats,
			Health:         a.health,
			RateLimit:      a.cfg.RateLimit,
			TracingService: "playoutd",
		}).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		var err error
		if a.listener != nil {
			a.logger.Info().Str(log.FieldEvent, "http.listening").Str("addr", a.listener.Addr().String()).Msg("status API listening")
			err = srv.Serve(a.listener)
		} else {
			a.logger.Info().Str(log.FieldEvent, "http.listening").Str("addr", srv.Addr).Msg("status API listening")
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status API: %w", err)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "http.shutdown_failed").Msg("status API did not shut down cleanly")
		}
		return nil
	})
}

// applyLoop applies the settings that can change without a restart.
func (a *App) applyLoop(ctx context.Context, updates <-chan config.AppConfig) error {
	level := a.cfg.LogLevel
	for {
		select {
		case <-ctx.Done():
			return nil
		case next := <-updates:
			if next.LogLevel == level {
				continue
			}
			if err := log.SetLevel(next.LogLevel); err != nil {
				a.logger.Warn().Err(err).Str("level", next.LogLevel).Msg("ignoring log level")
				continue
			}
			a.logger.Info().
				Str(log.FieldEvent, "config.applied").
				Str("old_level", level).
				Str("new_level", next.LogLevel).
				Msg("log level changed")
			level = next.LogLevel
		}
	}
}

// signalLoop reloads the config file on the reload signal.
func (a *App) signalLoop(ctx context.Context) error {
	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, a.reloadSignal)
	defer signal.Stop(hupChan)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hupChan:
			a.logger.Info().
				Str(log.FieldEvent, "config.reload_signal").
				Str("signal", a.reloadSignal.String()).
				Msg("received reload signal, reloading config")
			if err := a.holder.Reload(); err != nil {
				a.logger.Warn().Err(err).Str(log.FieldEvent, "config.reload_failed").Msg("config reload failed")
			}
		}
	}
}

func (a *App) stats() (playback.Stats, bool) {
	return a.session.Stats(), true
}

func (a *App) checkPlayback(context.Context) health.CheckResult {
	st := a.session.Stats()
	switch st.State {
	case playback.StateRunning:
		if st.Degraded {
			return health.CheckResult{Status: health.StatusDegraded, Message: "running", Error: st.LastError}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: "running"}
	case playback.StateReady, playback.StateInitializing:
		return health.CheckResult{Status: health.StatusDegraded, Message: string(st.State)}
	default:
		return health.CheckResult{Status: health.StatusUnhealthy, Message: string(st.State), Error: st.LastError}
	}
}
