// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/playout/internal/format"
	"github.com/rs/zerolog"
)

// Validate checks cfg and resolves the video mode and pixel format. All
// problems are reported at once as ValidationErrors.
func Validate(cfg *AppConfig) error {
	var v ValidationErrors

	if cfg.DeviceIndex < 0 {
		v.add("device.index", "must be non-negative", cfg.DeviceIndex)
	}
	if cfg.DeviceCount < 1 {
		v.add("device.count", "must be at least 1", cfg.DeviceCount)
	}

	if m, ok := format.ParseMode(cfg.Mode); ok {
		cfg.DisplayMode = m
	} else {
		v.add("video.mode", "unknown display mode", cfg.Mode)
	}
	if pf, ok := format.ParsePixelFormat(cfg.Format); ok {
		cfg.PixelFormat = pf
	} else {
		v.add("video.format", "unknown pixel format", cfg.Format)
	}

	if cfg.QueueDepth < 1 || cfg.QueueDepth > MaxQueueDepth {
		v.add("playback.queueDepth", "must be between 1 and 1024", cfg.QueueDepth)
	}
	if cfg.Preroll < 0 || cfg.Preroll > cfg.QueueDepth {
		v.add("playback.preroll", "must be between 0 and queueDepth", cfg.Preroll)
	}
	if cfg.StatsFile != "" && cfg.StatsInterval <= 0 {
		v.add("playback.statsInterval", "must be positive when statsFile is set", cfg.StatsInterval)
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		v.add("log.level", "unknown log level", cfg.LogLevel)
	}
	if cfg.RateLimit < 0 {
		v.add("http.rateLimit", "must be non-negative", cfg.RateLimit)
	}

	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.Exporter {
		case "grpc", "http":
		default:
			v.add("telemetry.exporter", "must be grpc or http", cfg.Telemetry.Exporter)
		}
		if cfg.Telemetry.Endpoint == "" {
			v.add("telemetry.endpoint", "required when telemetry is enabled", cfg.Telemetry.Endpoint)
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		v.add("telemetry.samplingRate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
	}

	if len(v) > 0 {
		return v
	}
	return nil
}
