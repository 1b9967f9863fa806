// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/playout/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSnapshot(t *testing.T, path string) statsSnapshot {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap statsSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	return snap
}

func TestWriteStatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, writeStatsFile(path, playback.Stats{SessionID: "abc", Queued: 3, Capacity: 8}))

	snap := readSnapshot(t, path)
	assert.Equal(t, "abc", snap.Session.SessionID)
	assert.Equal(t, 3, snap.Session.Queued)
	assert.False(t, snap.WrittenAt.IsZero())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteStatsFile_MissingDirectory(t *testing.T) {
	err := writeStatsFile(filepath.Join(t.TempDir(), "nope", "stats.json"), playback.Stats{})
	assert.Error(t, err)
}

func TestRunStatsWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	var calls atomic.Int64
	stats := func() playback.Stats {
		return playback.Stats{Delivered: uint64(calls.Add(1))}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- runStatsWriter(ctx, path, 10*time.Millisecond, stats) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-errc)
	assert.GreaterOrEqual(t, readSnapshot(t, path).Session.Delivered, uint64(2))
}
