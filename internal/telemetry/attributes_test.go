// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("GET", "/api/status", 200)

	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, HTTPMethodKey, "GET")
	verifyAttribute(t, attrs, HTTPRouteKey, "/api/status")
	verifyIntAttribute(t, attrs, HTTPStatusCodeKey, 200)
}

func TestSignalAttributes(t *testing.T) {
	attrs := SignalAttributes("HD1080i50", "10BitYUV", 1920, 1080, "25000/1000", true)

	verifyAttribute(t, attrs, VideoModeKey, "HD1080i50")
	verifyAttribute(t, attrs, VideoPixelFormatKey, "10BitYUV")
	verifyIntAttribute(t, attrs, VideoWidthKey, 1920)
	verifyIntAttribute(t, attrs, VideoHeightKey, 1080)
	verifyAttribute(t, attrs, VideoFrameRateKey, "25000/1000")
}

func TestPlaybackAttributes(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		state     string
		wantLen   int
	}{
		{name: "all fields", sessionID: "sess-1", state: "running", wantLen: 3},
		{name: "device only", wantLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := PlaybackAttributes(tt.sessionID, 2, tt.state)
			if len(attrs) != tt.wantLen {
				t.Fatalf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			verifyIntAttribute(t, attrs, DeviceIndexKey, 2)
		})
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("x"), "device")
	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, ErrorTypeKey, "device")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()
	for _, kv := range attrs {
		if string(kv.Key) == key {
			if got := kv.Value.AsString(); got != want {
				t.Errorf("attribute %s = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, want int64) {
	t.Helper()
	for _, kv := range attrs {
		if string(kv.Key) == key {
			if got := kv.Value.AsInt64(); got != want {
				t.Errorf("attribute %s = %d, want %d", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}
