// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeviceIntervalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_device_intervals_total",
		Help: "Total number of device frame intervals by result (consumed, repeated)",
	}, []string{"device", "result"})

	DeviceLateIntervalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_device_late_intervals_total",
		Help: "Total number of device frame intervals that fired after their deadline",
	}, []string{"device"})

	DeviceAcquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_device_acquire_total",
		Help: "Total number of device acquire attempts by result",
	}, []string{"result"})

	DeviceReleaseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playout_device_release_failures_total",
		Help: "Total number of device release errors swallowed during stop",
	}, []string{"device"})
)

// IncDeviceInterval records one device interval.
func IncDeviceInterval(index int, consumed bool) {
	result := "repeated"
	if consumed {
		result = "consumed"
	}
	DeviceIntervalsTotal.WithLabelValues(deviceLabel(index), result).Inc()
}

// IncDeviceLate records an interval that fired after its deadline.
func IncDeviceLate(index int) {
	DeviceLateIntervalsTotal.WithLabelValues(deviceLabel(index)).Inc()
}

// IncDeviceAcquire records an acquire attempt; result is "ok", "busy",
// "no_device", "unsupported" or "error".
func IncDeviceAcquire(result string) {
	DeviceAcquireTotal.WithLabelValues(result).Inc()
}

// IncDeviceReleaseFailure records a release error that was logged and dropped.
func IncDeviceReleaseFailure(index int) {
	DeviceReleaseFailuresTotal.WithLabelValues(deviceLabel(index)).Inc()
}
