// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

// Stats is a point-in-time snapshot of a session.
type Stats struct {
	SessionID   string  `json:"sessionId"`
	DeviceIndex int     `json:"deviceIndex"`
	Mode        string  `json:"mode"`
	PixelFormat string  `json:"pixelFormat"`
	State       State   `json:"state"`
	Queued      int     `json:"queued"`
	Capacity    int     `json:"capacity"`
	HighWater   int     `json:"highWater"`
	FillPercent float64 `json:"fillPercent"`
	Submitted   uint64  `json:"submitted"`
	Delivered   uint64  `json:"delivered"`
	Underruns   uint64  `json:"underruns"`
	QueueFull   uint64  `json:"queueFull"`
	Rejected    uint64  `json:"rejected"`
	Errors      uint64  `json:"errors"`
	Degraded    bool    `json:"degraded"`
	LastError   string  `json:"lastError,omitempty"`
}

// Stats returns the current counters and queue fill level.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		SessionID:   s.id,
		DeviceIndex: s.index,
		Mode:        s.mode.String(),
		PixelFormat: s.pf.String(),
		State:       s.state,
		Queued:      s.queue.Len(),
		Capacity:    s.queue.Cap(),
		HighWater:   s.queue.highWater,
		Submitted:   s.submitted,
		Delivered:   s.delivered,
		Underruns:   s.underruns,
		QueueFull:   s.queueFull,
		Rejected:    s.rejected,
		Errors:      s.errCount,
		Degraded:    s.degraded,
	}
	if st.Capacity > 0 {
		st.FillPercent = float64(st.Queued) * 100 / float64(st.Capacity)
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
