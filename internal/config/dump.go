// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// ToFileConfig renders an effective configuration in file form, so it can be
// dumped and loaded back unchanged.
func ToFileConfig(cfg AppConfig) FileConfig {
	mode := cfg.Mode
	if cfg.DisplayMode != 0 {
		mode = cfg.DisplayMode.Tag()
	}
	pf := cfg.Format
	if cfg.PixelFormat != 0 {
		pf = cfg.PixelFormat.FourCC()
	}
	var interval string
	if cfg.StatsInterval > 0 {
		interval = cfg.StatsInterval.String()
	}

	return FileConfig{
		Device: DeviceFileConfig{
			Index: ptr(cfg.DeviceIndex),
			Count: ptr(cfg.DeviceCount),
		},
		Video: VideoFileConfig{Mode: mode, Format: pf},
		Playback: PlaybackFileConfig{
			QueueDepth:    ptr(cfg.QueueDepth),
			Source:        cfg.Source,
			Loop:          ptr(cfg.Loop),
			Preroll:       ptr(cfg.Preroll),
			StatsFile:     cfg.StatsFile,
			StatsInterval: interval,
		},
		Log: LogFileConfig{Level: cfg.LogLevel},
		HTTP: HTTPFileConfig{
			ListenAddr: cfg.ListenAddr,
			RateLimit:  ptr(cfg.RateLimit),
		},
		Telemetry: TelemetryFileConfig{
			Enabled:      ptr(cfg.Telemetry.Enabled),
			Exporter:     cfg.Telemetry.Exporter,
			Endpoint:     cfg.Telemetry.Endpoint,
			SamplingRate: ptr(cfg.Telemetry.SamplingRate),
		},
	}
}

func ptr[T any](v T) *T { return &v }
