// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/ManuGH/playout/internal/config"
	"github.com/ManuGH/playout/internal/daemon"
	"github.com/ManuGH/playout/internal/device/sim"
	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/playback"
	"github.com/ManuGH/playout/internal/telemetry"
	"github.com/ManuGH/playout/internal/version"
)

const telemetryShutdownTimeout = 5 * time.Second

func runDaemon(ctx context.Context, configPath string) error {
	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Service: "playoutd", Version: version.Version})
	logger := log.WithComponent("daemon")

	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str(log.FieldPath, configPath).
			Msg("failed to load configuration")
		return fmt.Errorf("load configuration: %w", err)
	}

	log.Reconfigure(log.Config{Level: cfg.LogLevel, Service: "playoutd", Version: cfg.Version})
	logger = log.WithComponent("daemon")

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str(log.FieldEvent, "config.loaded").
		Str("source", source).
		Str(log.FieldPath, configPath).
		Strs("env_keys", slices.Sorted(maps.Keys(loader.ConsumedEnvKeys))).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "playoutd",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "telemetry.shutdown_failed").Msg("trace exporter did not flush")
		}
	}()

	drv := sim.New(sim.WithDevices(cfg.DeviceCount))
	session, err := playback.New(drv, cfg.DeviceIndex, cfg.DisplayMode, cfg.PixelFormat,
		playback.WithQueueDepth(cfg.QueueDepth),
	)
	if err != nil {
		return err
	}

	logger.Info().
		Str(log.FieldEvent, "daemon.starting").
		Str(log.FieldSessionID, session.ID()).
		Int(log.FieldDeviceIndex, cfg.DeviceIndex).
		Str(log.FieldDisplayMode, cfg.DisplayMode.String()).
		Str(log.FieldPixelFormat, cfg.PixelFormat.String()).
		Int(log.FieldQueueLimit, cfg.QueueDepth).
		Str("source", cfg.Source).
		Msg("starting playout")

	app := daemon.NewApp(logger, session, cfg, daemon.WithConfigHolder(config.NewHolder(cfg, loader)))
	if err := app.Run(ctx); err != nil {
		return err
	}
	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("playout stopped")
	return nil
}
