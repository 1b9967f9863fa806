// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingSession is returned when an App is built without a session.
	ErrMissingSession = errors.New("playback session is required")

	// ErrSourceInvalid classifies unreadable or empty frame sources.
	ErrSourceInvalid = errors.New("invalid frame source")
)
