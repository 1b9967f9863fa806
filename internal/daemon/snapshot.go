// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/playback"
	"github.com/google/renameio/v2"
)

// statsSnapshot is the document written to the stats file.
type statsSnapshot struct {
	WrittenAt time.Time      `json:"writtenAt"`
	Session   playback.Stats `json:"session"`
}

// writeStatsFile replaces path atomically, so readers never see a torn
// document.
func writeStatsFile(path string, st playback.Stats) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending stats file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statsSnapshot{WrittenAt: time.Now().UTC(), Session: st}); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace stats file: %w", err)
	}
	return nil
}

// runStatsWriter dumps the session stats every interval until ctx ends.
func runStatsWriter(ctx context.Context, path string, interval time.Duration, stats func() playback.Stats) error {
	logger := log.WithComponent("stats").With().Str(log.FieldPath, path).Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := writeStatsFile(path, stats()); err != nil {
			// Log the first failure of a streak only.
			if !failing {
				logger.Warn().Err(err).Str(log.FieldEvent, "stats.write_failed").Msg("stats snapshot not written")
			}
			failing = true
			continue
		}
		if failing {
			logger.Info().Str(log.FieldEvent, "stats.write_recovered").Msg("stats snapshot written again")
		}
		failing = false
	}
}
