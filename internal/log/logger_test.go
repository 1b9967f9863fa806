// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf, Service: "playoutd-test", Version: "v0.0.0-test"})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestWithComponent_AddsServiceAndComponent(t *testing.T) {
	buf := capture(t)

	logger := WithComponent("playback")
	logger.Info().Str(FieldEvent, "session.created").Msg("created")

	entry := decodeLine(t, buf)
	assert.Equal(t, "playoutd-test", entry["service"])
	assert.Equal(t, "v0.0.0-test", entry["version"])
	assert.Equal(t, "playback", entry[FieldComponent])
	assert.Equal(t, "session.created", entry[FieldEvent])
}

func TestWithContext_AddsSessionID(t *testing.T) {
	buf := capture(t)

	ctx := ContextWithSessionID(context.Background(), "sess-1")
	ctx = ContextWithRequestID(ctx, "req-1")
	logger := WithComponentFromContext(ctx, "daemon")
	logger.Info().Msg("ctx")

	entry := decodeLine(t, buf)
	assert.Equal(t, "sess-1", entry[FieldSessionID])
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "daemon", entry[FieldComponent])
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))
}
