// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldToken     = "token"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOp        = "op"

	// Device / signal fields
	FieldDeviceIndex = "device_index"
	FieldDisplayMode = "display_mode"
	FieldPixelFormat = "pixel_format"
	FieldResolution  = "resolution"
	FieldFrameRate   = "frame_rate"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Queue fields
	FieldQueueDepth = "queue_depth"
	FieldQueueLimit = "queue_limit"

	// Path fields
	FieldPath = "path"
)
