// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ManuGH/playout/internal/log"
	"github.com/ManuGH/playout/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestMemoryBusDeliversInOrder(t *testing.T) {
	b := NewMemoryBus()
	sub, err := b.Subscribe(context.Background(), "events")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(context.Background(), "events", i))
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, <-sub.C())
	}
}

func TestMemoryBusFanOut(t *testing.T) {
	b := NewMemoryBus()
	s1, err := b.Subscribe(context.Background(), "events")
	require.NoError(t, err)
	s2, err := b.Subscribe(context.Background(), "events")
	require.NoError(t, err)
	other, err := b.Subscribe(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Subscribers("events"))

	require.NoError(t, b.Publish(context.Background(), "events", "hello"))
	assert.Equal(t, "hello", <-s1.C())
	assert.Equal(t, "hello", <-s2.C())
	assert.Empty(t, other.C())

	require.NoError(t, b.Close())
}

func TestMemoryBusPublishContextTimeoutIncrementsDropMetrics(t *testing.T) {
	b := NewMemoryBus(WithBuffer(4))
	sub, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	// Fill subscriber channel to capacity so next publish blocks.
	for i := 0; i < cap(sub.C()); i++ {
		require.NoError(t, b.Publish(context.Background(), "topic", "msg"))
	}

	initial := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("topic", "timeout"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = b.Publish(ctx, "topic", "blocked")
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	final := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("topic", "timeout"))
	require.Greater(t, final, initial, "expected bus drop counter to increase")
}

func TestMemoryBusTryPublishDropsWhenFull(t *testing.T) {
	b := NewMemoryBus(WithBuffer(1))
	sub, err := b.Subscribe(context.Background(), "try")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	initial := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("try", "full"))

	assert.Equal(t, 0, b.TryPublish("try", 1))
	assert.Equal(t, 1, b.TryPublish("try", 2))

	assert.Equal(t, 1, <-sub.C())
	final := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("try", "full"))
	assert.Equal(t, initial+1, final)
}

func TestMemoryBusDropIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.Reconfigure(log.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { log.Reconfigure(log.Config{Level: "info"}) })

	b := NewMemoryBus(WithBuffer(1))
	sub, err := b.Subscribe(context.Background(), "logged")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	require.Equal(t, 0, b.TryPublish("logged", 0))
	// One warning is written per dropLogEvery drops.
	for i := 0; i < dropLogEvery; i++ {
		b.TryPublish("logged", i)
	}
	assert.Contains(t, buf.String(), "memory bus dropped message")
	assert.Contains(t, buf.String(), `"topic":"logged"`)
}

func TestMemoryBusPublishRejectsNilContext(t *testing.T) {
	b := NewMemoryBus()
	//nolint:staticcheck // nil context is the point of the test
	err := b.Publish(nil, "topic", "msg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "context is nil")
}

func TestMemoryBusCloseUnblocksPublisher(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	b := NewMemoryBus(WithBuffer(1))
	sub, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)
	require.NoError(t, b.Publish(context.Background(), "topic", "fill"))

	published := make(chan error, 1)
	go func() {
		published <- b.Publish(context.Background(), "topic", "blocked")
	}()

	require.NoError(t, sub.Close())
	require.NoError(t, <-published)

	// drained channel is closed after the buffered message
	assert.Equal(t, "fill", <-sub.C())
	_, open := <-sub.C()
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers("topic"))
}

func TestMemoryBusClosed(t *testing.T) {
	b := NewMemoryBus()
	sub, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, open := <-sub.C()
	assert.False(t, open)
	require.NoError(t, sub.Close())

	require.ErrorIs(t, b.Publish(context.Background(), "topic", "late"), ErrClosed)
	assert.Equal(t, 0, b.TryPublish("topic", "late"))
	_, err = b.Subscribe(context.Background(), "topic")
	require.ErrorIs(t, err, ErrClosed)
}
