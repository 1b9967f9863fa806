// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/playout/internal/config"
	"github.com/ManuGH/playout/internal/device"
	"github.com/ManuGH/playout/internal/device/sim"
	"github.com/ManuGH/playout/internal/format"
	"github.com/ManuGH/playout/internal/health"
	"github.com/ManuGH/playout/internal/playback"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.ListenAddr = ""
	cfg.RateLimit = 0
	cfg.StatsFile = filepath.Join(t.TempDir(), "stats.json")
	cfg.StatsInterval = 20 * time.Millisecond
	return cfg
}

func TestApp_RunServesStatusAndStops(t *testing.T) {
	s := newSession(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := testConfig(t)
	app := NewApp(zerolog.Nop(), s, cfg, WithListener(ln), WithReloadSignal(nil))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: time.Second}
	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/readyz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	var body struct {
		Version string         `json:"version"`
		Session playback.Stats `json:"session"`
	}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/api/status")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body.Session.State == playback.StateRunning
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "test", body.Version)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	assert.Equal(t, playback.StateStopped, s.State())
	assert.Equal(t, playback.StateStopped, readSnapshot(t, cfg.StatsFile).Session.State)
}

func TestApp_InitializeFailureStopsSession(t *testing.T) {
	drv := sim.New(sim.WithDevices(1))
	owner, err := drv.Acquire(context.Background(), 0, format.ModePALp, format.Format8BitYUV)
	require.NoError(t, err)
	defer func() { _ = owner.Release() }()

	s, err := playback.New(drv, 0, format.ModePALp, format.Format8BitYUV)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.StatsFile = ""
	err = NewApp(zerolog.Nop(), s, cfg, WithReloadSignal(nil)).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrBusy)
	assert.Equal(t, playback.StateStopped, s.State())
}

func TestApp_MissingSession(t *testing.T) {
	err := NewApp(zerolog.Nop(), nil, testConfig(t)).Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestApp_FeederErrorEndsRun(t *testing.T) {
	s := newSession(t)
	cfg := testConfig(t)
	cfg.StatsFile = ""
	cfg.Source = filepath.Join(t.TempDir(), "absent.raw")

	err := NewApp(zerolog.Nop(), s, cfg, WithReloadSignal(nil)).Run(context.Background())
	assert.ErrorIs(t, err, ErrSourceInvalid)
	assert.Equal(t, playback.StateStopped, s.State())
}

func TestApp_OutputHoldsUntilCancelled(t *testing.T) {
	tests := []struct {
		name   string
		frames int
	}{
		{name: "finite source", frames: 2},
		{name: "no source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			cfg := testConfig(t)
			cfg.StatsFile = ""
			if tt.frames > 0 {
				cfg.Source = filepath.Join(t.TempDir(), "clip.raw")
				writeFrames(t, cfg.Source, s.FrameBytes(), tt.frames, 0)
			}
			played := countPlayed(t, s)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errc := make(chan error, 1)
			go func() { errc <- NewApp(zerolog.Nop(), s, cfg, WithReloadSignal(nil)).Run(ctx) }()

			require.Eventually(t, func() bool {
				return s.State() == playback.StateRunning && played.get() == tt.frames
			}, 3*time.Second, 10*time.Millisecond)

			select {
			case err := <-errc:
				t.Fatalf("run returned before cancel: %v", err)
			case <-time.After(200 * time.Millisecond):
			}
			assert.Equal(t, playback.StateRunning, s.State())

			cancel()
			select {
			case err := <-errc:
				require.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("app did not stop")
			}
			assert.Equal(t, playback.StateStopped, s.State())
		})
	}
}

func TestApp_ApplyLoopChangesLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	cfg := testConfig(t)
	cfg.LogLevel = "info"
	app := NewApp(zerolog.Nop(), newSession(t), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan config.AppConfig)
	done := make(chan error, 1)
	go func() { done <- app.applyLoop(ctx, updates) }()

	next := cfg
	next.LogLevel = "shouting"
	updates <- next
	next.LogLevel = "debug"
	updates <- next
	// A third send only completes once the second was applied.
	updates <- next
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	cancel()
	require.NoError(t, <-done)
}

func TestApp_PlaybackCheck(t *testing.T) {
	s := newSession(t)
	app := NewApp(zerolog.Nop(), s, testConfig(t))
	ctx := context.Background()

	assert.Equal(t, health.StatusUnhealthy, app.checkPlayback(ctx).Status)

	require.NoError(t, s.EnsureInitialized(ctx))
	assert.Equal(t, health.StatusDegraded, app.checkPlayback(ctx).Status)

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, health.StatusHealthy, app.checkPlayback(ctx).Status)

	s.Stop(ctx)
	assert.Equal(t, health.StatusUnhealthy, app.checkPlayback(ctx).Status)
	assert.Equal(t, health.StatusUnhealthy, app.Health().Ready(ctx).Status)
}
