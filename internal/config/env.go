// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/playout/internal/log"
	"github.com/rs/zerolog"
)

// Environment keys
const (
	EnvDeviceIndex   = "PLAYOUT_DEVICE_INDEX"
	EnvDeviceCount   = "PLAYOUT_DEVICE_COUNT"
	EnvMode          = "PLAYOUT_MODE"
	EnvFormat        = "PLAYOUT_FORMAT"
	EnvQueueDepth    = "PLAYOUT_QUEUE_DEPTH"
	EnvSource        = "PLAYOUT_SOURCE"
	EnvLoop          = "PLAYOUT_LOOP"
	EnvPreroll       = "PLAYOUT_PREROLL"
	EnvStatsFile     = "PLAYOUT_STATS_FILE"
	EnvStatsInterval = "PLAYOUT_STATS_INTERVAL"
	EnvLogLevel      = "PLAYOUT_LOG_LEVEL"
	EnvListen        = "PLAYOUT_LISTEN"
	EnvRateLimit     = "PLAYOUT_HTTP_RATE_LIMIT"
	EnvOTelEnabled   = "PLAYOUT_OTEL_ENABLED"
	EnvOTelExporter  = "PLAYOUT_OTEL_EXPORTER"
	EnvOTelEndpoint  = "PLAYOUT_OTEL_ENDPOINT"
	EnvOTelSampling  = "PLAYOUT_OTEL_SAMPLING_RATE"
)

// lookup reports the value of key and logs where the effective value came
// from. An empty variable counts as unset.
func lookup(logger zerolog.Logger, key string, def any) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		logger.Debug().
			Str("key", key).
			Interface("default", def).
			Str("source", "default").
			Msg("using default value")
		return "", false
	}
	if v == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", def).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return "", false
	}
	return v, true
}

func parseEnv[T any](key string, def T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	raw, ok := lookup(logger, key, def)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", raw).
			Interface("default", def).
			Err(err).
			Msg("invalid environment variable, using default")
		return def
	}
	logger.Debug().
		Str("key", key).
		Interface("value", v).
		Str("source", "environment").
		Msg("using environment variable")
	return v
}

// ParseString reads a string from the environment or returns def.
func ParseString(key, def string) string {
	return parseEnv(key, def, func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from the environment. Malformed values fall back
// to def with a warning.
func ParseInt(key string, def int) int {
	return parseEnv(key, def, strconv.Atoi)
}

// ParseDuration reads a Go duration ("250ms", "2s").
func ParseDuration(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, time.ParseDuration)
}

// ParseFloat reads a float64.
func ParseFloat(key string, def float64) float64 {
	return parseEnv(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitive.
func ParseBool(key string, def bool) bool {
	return parseEnv(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}
