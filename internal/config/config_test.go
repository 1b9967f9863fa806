// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/playout/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	// Unset all PLAYOUT vars so the developer's shell cannot leak into tests.
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "PLAYOUT_") {
			key, _, _ := strings.Cut(e, "=")
			if err := os.Unsetenv(key); err != nil {
				panic("failed to unset env: " + err.Error())
			}
		}
	}
	goleak.VerifyTestMain(m)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, 0, cfg.DeviceIndex)
	assert.Equal(t, format.ModeHD1080i50, cfg.DisplayMode)
	assert.Equal(t, format.Format10BitYUV, cfg.PixelFormat)
	assert.Equal(t, DefaultQueueDepth, cfg.QueueDepth)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
device:
  index: 2
  count: 4
video:
  mode: hd720p5994
  format: UYVY
playback:
  queueDepth: 16
  preroll: 8
  loop: true
  statsFile: /tmp/stats.json
  statsInterval: 2s
http:
  rateLimit: 5
`)
	t.Setenv(EnvDeviceIndex, "3")
	t.Setenv(EnvQueueDepth, "")

	l := NewLoader(path, "test")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.DeviceIndex, "env beats file")
	assert.Equal(t, 4, cfg.DeviceCount, "file beats default")
	assert.Equal(t, 16, cfg.QueueDepth, "empty env keeps file value")
	assert.Equal(t, format.ModeHD720p5994, cfg.DisplayMode)
	assert.Equal(t, format.Format8BitYUV, cfg.PixelFormat)
	assert.True(t, cfg.Loop)
	assert.Equal(t, 2*time.Second, cfg.StatsInterval)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Contains(t, l.ConsumedEnvKeys, EnvDeviceIndex)
}

func TestLoad_StrictUnknownField(t *testing.T) {
	path := writeConfig(t, "video:\n  mode: Hi50\n  colour: red\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoad_RejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n---\nlog:\n  level: info\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultMode, cfg.Mode)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playout.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML supported")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.DeviceIndex = -1
	cfg.Mode = "bogus"
	cfg.Format = "nope"
	cfg.QueueDepth = 2000
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Exporter = "zipkin"

	err := Validate(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	var fields []string
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{
		"device.index",
		"video.mode",
		"video.format",
		"playback.queueDepth",
		"telemetry.exporter",
	}, fields)
}

func TestValidate_PrerollBoundedByQueue(t *testing.T) {
	cfg := Defaults()
	cfg.QueueDepth = 2
	cfg.Preroll = 3
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playback.preroll")
}

func TestParseHelpers(t *testing.T) {
	t.Setenv("PLAYOUT_TEST_INT", "42")
	t.Setenv("PLAYOUT_TEST_BAD_INT", "forty-two")
	t.Setenv("PLAYOUT_TEST_BOOL", "YES")
	t.Setenv("PLAYOUT_TEST_BAD_BOOL", "maybe")
	t.Setenv("PLAYOUT_TEST_DUR", "250ms")
	t.Setenv("PLAYOUT_TEST_FLOAT", "0.25")
	t.Setenv("PLAYOUT_TEST_EMPTY", "")

	assert.Equal(t, 42, ParseInt("PLAYOUT_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("PLAYOUT_TEST_BAD_INT", 1))
	assert.True(t, ParseBool("PLAYOUT_TEST_BOOL", false))
	assert.True(t, ParseBool("PLAYOUT_TEST_BAD_BOOL", true))
	assert.Equal(t, 250*time.Millisecond, ParseDuration("PLAYOUT_TEST_DUR", time.Second))
	assert.InDelta(t, 0.25, ParseFloat("PLAYOUT_TEST_FLOAT", 1), 1e-9)
	assert.Equal(t, "fallback", ParseString("PLAYOUT_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", ParseString("PLAYOUT_TEST_UNSET", "fallback"))
}

func TestHolder_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)

	h := NewHolder(cfg, l)
	updates := make(chan AppConfig, 1)
	h.Subscribe(updates)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	require.NoError(t, h.Reload())
	assert.Equal(t, "debug", h.Get().LogLevel)
	assert.Equal(t, "debug", (<-updates).LogLevel)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: shouting\n"), 0o600))
	require.Error(t, h.Reload())
	assert.Equal(t, "debug", h.Get().LogLevel)
}

func TestHolder_WatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)

	h := NewHolder(cfg, l)
	updates := make(chan AppConfig, 4)
	h.Subscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.Wait()
	}()
	require.NoError(t, h.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	select {
	case got := <-updates:
		assert.Equal(t, "warn", got.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not picked up")
	}
}

func TestHolder_WatchWithoutFile(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader("", ""))
	require.NoError(t, h.Watch(context.Background()))
	h.Wait()
}

func TestToFileConfig_LoadsBackUnchanged(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "hd720p5994"
	cfg.Format = "2vuy"
	cfg.Source = "/srv/clips"
	cfg.Loop = true
	cfg.StatsInterval = 3 * time.Second
	require.NoError(t, Validate(&cfg))

	out, err := yaml.Marshal(ToFileConfig(cfg))
	require.NoError(t, err)
	assert.Contains(t, string(out), "mode: hp59")

	back, err := NewLoader(writeConfig(t, string(out)), "").Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.DisplayMode, back.DisplayMode)
	assert.Equal(t, cfg.PixelFormat, back.PixelFormat)
	assert.Equal(t, cfg.Source, back.Source)
	assert.True(t, back.Loop)
	assert.Equal(t, cfg.StatsInterval, back.StatsInterval)
	assert.Equal(t, cfg.QueueDepth, back.QueueDepth)
}
