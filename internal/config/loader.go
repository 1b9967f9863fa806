// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips
// the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path is the configured file path, possibly empty.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

// Load loads configuration with precedence: ENV > File > Defaults, then
// validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(&cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return decodeFile(data)
}

func decodeFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	setInt(&dst.DeviceIndex, src.Device.Index)
	setInt(&dst.DeviceCount, src.Device.Count)
	setString(&dst.Mode, src.Video.Mode)
	setString(&dst.Format, src.Video.Format)

	setInt(&dst.QueueDepth, src.Playback.QueueDepth)
	setString(&dst.Source, src.Playback.Source)
	if src.Playback.Loop != nil {
		dst.Loop = *src.Playback.Loop
	}
	setInt(&dst.Preroll, src.Playback.Preroll)
	setString(&dst.StatsFile, src.Playback.StatsFile)
	if src.Playback.StatsInterval != "" {
		d, err := time.ParseDuration(src.Playback.StatsInterval)
		if err != nil {
			return fmt.Errorf("playback.statsInterval: %w", err)
		}
		dst.StatsInterval = d
	}

	setString(&dst.LogLevel, src.Log.Level)
	setString(&dst.ListenAddr, src.HTTP.ListenAddr)
	setInt(&dst.RateLimit, src.HTTP.RateLimit)

	if src.Telemetry.Enabled != nil {
		dst.Telemetry.Enabled = *src.Telemetry.Enabled
	}
	setString(&dst.Telemetry.Exporter, src.Telemetry.Exporter)
	setString(&dst.Telemetry.Endpoint, src.Telemetry.Endpoint)
	if src.Telemetry.SamplingRate != nil {
		dst.Telemetry.SamplingRate = *src.Telemetry.SamplingRate
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DeviceIndex = l.envInt(EnvDeviceIndex, cfg.DeviceIndex)
	cfg.DeviceCount = l.envInt(EnvDeviceCount, cfg.DeviceCount)
	cfg.Mode = l.envString(EnvMode, cfg.Mode)
	cfg.Format = l.envString(EnvFormat, cfg.Format)

	cfg.QueueDepth = l.envInt(EnvQueueDepth, cfg.QueueDepth)
	cfg.Source = l.envString(EnvSource, cfg.Source)
	cfg.Loop = l.envBool(EnvLoop, cfg.Loop)
	cfg.Preroll = l.envInt(EnvPreroll, cfg.Preroll)
	cfg.StatsFile = l.envString(EnvStatsFile, cfg.StatsFile)
	cfg.StatsInterval = l.envDuration(EnvStatsInterval, cfg.StatsInterval)

	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.ListenAddr = l.envString(EnvListen, cfg.ListenAddr)
	cfg.RateLimit = l.envInt(EnvRateLimit, cfg.RateLimit)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSampling, cfg.Telemetry.SamplingRate)
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
