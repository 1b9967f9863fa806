// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Device attributes
	DeviceIndexKey = "device.index"

	// Video signal attributes
	VideoModeKey        = "video.mode"
	VideoPixelFormatKey = "video.pixel_format"
	VideoWidthKey       = "video.width"
	VideoHeightKey      = "video.height"
	VideoFrameRateKey   = "video.frame_rate"
	VideoInterlacedKey  = "video.interlaced"

	// Playback attributes
	PlaybackSessionKey    = "playback.session_id"
	PlaybackStateKey      = "playback.state"
	PlaybackQueueDepthKey = "playback.queue_depth"
	PlaybackDiscardedKey  = "playback.discarded"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// SignalAttributes describes the video signal a device is driving. frameRate
// is rendered as "num/den" to keep it exact.
func SignalAttributes(mode, pixelFormat string, width, height int, frameRate string, interlaced bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(VideoModeKey, mode),
		attribute.String(VideoPixelFormatKey, pixelFormat),
		attribute.Int(VideoWidthKey, width),
		attribute.Int(VideoHeightKey, height),
		attribute.String(VideoFrameRateKey, frameRate),
		attribute.Bool(VideoInterlacedKey, interlaced),
	}
}

// PlaybackAttributes creates session-related span attributes.
func PlaybackAttributes(sessionID string, deviceIndex int, state string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(PlaybackSessionKey, sessionID))
	}
	attrs = append(attrs, attribute.Int(DeviceIndexKey, deviceIndex))
	if state != "" {
		attrs = append(attrs, attribute.String(PlaybackStateKey, state))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
