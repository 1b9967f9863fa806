// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the playoutd configuration.
package config

import (
	"time"

	"github.com/ManuGH/playout/internal/format"
)

// Defaults
const (
	DefaultDeviceIndex   = 0
	DefaultDeviceCount   = 1
	DefaultMode          = "Hi50"
	DefaultFormat        = "v210"
	DefaultQueueDepth    = 8
	DefaultPreroll       = 4
	DefaultLogLevel      = "info"
	DefaultListenAddr    = ":9310"
	DefaultRateLimit     = 20
	DefaultExporter      = "http"
	DefaultEndpoint      = "localhost:4318"
	DefaultSamplingRate  = 1.0
	DefaultStatsInterval = time.Second
	MaxQueueDepth        = 1024
)

// AppConfig is the effective configuration after defaults, file and
// environment have been merged.
type AppConfig struct {
	Version string

	DeviceIndex int
	DeviceCount int

	// Mode and Format hold the operator's spelling; DisplayMode and
	// PixelFormat are resolved by Validate.
	Mode        string
	Format      string
	DisplayMode format.DisplayMode
	PixelFormat format.PixelFormat

	QueueDepth    int
	Source        string
	Loop          bool
	Preroll       int
	StatsFile     string
	StatsInterval time.Duration

	LogLevel string

	ListenAddr string
	RateLimit  int

	Telemetry TelemetryConfig
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML file. Pointers tell "unset" from zero values.
type FileConfig struct {
	Device    DeviceFileConfig    `yaml:"device"`
	Video     VideoFileConfig     `yaml:"video"`
	Playback  PlaybackFileConfig  `yaml:"playback"`
	Log       LogFileConfig       `yaml:"log"`
	HTTP      HTTPFileConfig      `yaml:"http"`
	Telemetry TelemetryFileConfig `yaml:"telemetry"`
}

type DeviceFileConfig struct {
	Index *int `yaml:"index"`
	Count *int `yaml:"count"`
}

type VideoFileConfig struct {
	Mode   string `yaml:"mode"`
	Format string `yaml:"format"`
}

type PlaybackFileConfig struct {
	QueueDepth    *int   `yaml:"queueDepth"`
	Source        string `yaml:"source"`
	Loop          *bool  `yaml:"loop"`
	Preroll       *int   `yaml:"preroll"`
	StatsFile     string `yaml:"statsFile"`
	StatsInterval string `yaml:"statsInterval"`
}

type LogFileConfig struct {
	Level string `yaml:"level"`
}

type HTTPFileConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	RateLimit  *int   `yaml:"rateLimit"`
}

type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled"`
	Exporter     string   `yaml:"exporter"`
	Endpoint     string   `yaml:"endpoint"`
	SamplingRate *float64 `yaml:"samplingRate"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DeviceIndex:   DefaultDeviceIndex,
		DeviceCount:   DefaultDeviceCount,
		Mode:          DefaultMode,
		Format:        DefaultFormat,
		QueueDepth:    DefaultQueueDepth,
		Preroll:       DefaultPreroll,
		StatsInterval: DefaultStatsInterval,
		LogLevel:      DefaultLogLevel,
		ListenAddr:    DefaultListenAddr,
		RateLimit:     DefaultRateLimit,
		Telemetry: TelemetryConfig{
			Exporter:     DefaultExporter,
			Endpoint:     DefaultEndpoint,
			SamplingRate: DefaultSamplingRate,
		},
	}
}
