// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaybackFramesSubmittedTotal counts frames accepted into a session queue.
	PlaybackFramesSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_frames_submitted_total",
		Help: "Total number of frames accepted into the playback queue",
	}, []string{"device"})

	// PlaybackFramesPlayedTotal counts frames the device reported as consumed.
	PlaybackFramesPlayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_frames_played_total",
		Help: "Total number of frames delivered to the output device",
	}, []string{"device"})

	// PlaybackUnderrunsTotal counts intervals with no queued frame.
	PlaybackUnderrunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_underruns_total",
		Help: "Total number of frame intervals that repeated a held frame",
	}, []string{"device"})

	// PlaybackQueueFullTotal counts submissions rejected by backpressure.
	PlaybackQueueFullTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_queue_full_total",
		Help: "Total number of frame submissions rejected because the queue was full",
	}, []string{"device"})

	PlaybackErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_errors_total",
		Help: "Total number of playback errors by operation",
	}, []string{"device", "op"})

	PlaybackStateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_state_transitions_total",
		Help: "Total number of playback session state transitions",
	}, []string{"from", "to"})

	PlaybackQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playout_queue_depth",
		Help: "Number of frames currently queued for the device",
	}, []string{"device"})

	PlaybackQueueHighWater = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playout_queue_high_water",
		Help: "Highest queue depth observed in the current session",
	}, []string{"device"})

	// PlaybackOpDuration tracks blocking lifecycle operations against the device.
	PlaybackOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "playout_op_duration_seconds",
		Help:    "Duration of playback lifecycle operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"op", "result"})
)

func deviceLabel(index int) string {
	return strconv.Itoa(index)
}

// IncFrameSubmitted records an accepted frame.
func IncFrameSubmitted(index int) {
	PlaybackFramesSubmittedTotal.WithLabelValues(deviceLabel(index)).Inc()
}

// IncFramePlayed records a consumed frame.
func IncFramePlayed(index int) {
	PlaybackFramesPlayedTotal.WithLabelValues(deviceLabel(index)).Inc()
}

// IncUnderrun records an interval that repeated a held frame.
func IncUnderrun(index int) {
	PlaybackUnderrunsTotal.WithLabelValues(deviceLabel(index)).Inc()
}

// IncQueueFull records a submission rejected by backpressure.
func IncQueueFull(index int) {
	PlaybackQueueFullTotal.WithLabelValues(deviceLabel(index)).Inc()
}

// IncPlaybackError records an error surfaced for op.
func IncPlaybackError(index int, op string) {
	if op == "" {
		op = "unknown"
	}
	PlaybackErrorsTotal.WithLabelValues(deviceLabel(index), op).Inc()
}

// IncStateTransition records a session state change.
func IncStateTransition(from, to string) {
	PlaybackStateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// SetQueueDepth publishes the current queue depth and high-water mark.
func SetQueueDepth(index, depth, highWater int) {
	label := deviceLabel(index)
	PlaybackQueueDepth.WithLabelValues(label).Set(float64(depth))
	PlaybackQueueHighWater.WithLabelValues(label).Set(float64(highWater))
}

// ObservePlaybackOp records the duration of a lifecycle operation.
func ObservePlaybackOp(op string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	PlaybackOpDuration.WithLabelValues(op, result).Observe(d.Seconds())
}
