// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_DisabledInstallsNoop(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ExporterType: ExporterGRPC})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zipkin" not supported`)
}

func TestNewProvider_HTTPExporter(t *testing.T) {
	t.Cleanup(func() { _, _ = NewProvider(context.Background(), Config{}) })

	provider, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "playoutd-test",
		ExporterType: ExporterHTTP,
		Endpoint:     "127.0.0.1:4318",
		SamplingRate: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, provider.tp)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		1:   "AlwaysOnSampler",
		2:   "AlwaysOnSampler",
		0:   "AlwaysOffSampler",
		-1:  "AlwaysOffSampler",
		0.5: "TraceIDRatioBased",
	}
	for rate, want := range cases {
		desc := Sampler(rate).Description()
		assert.Contains(t, desc, "ParentBased", "rate %v", rate)
		assert.Contains(t, desc, want, "rate %v", rate)
	}
}

func TestProvider_ShutdownWhenOff(t *testing.T) {
	var provider *Provider
	assert.NoError(t, provider.Shutdown(context.Background()))
	assert.NoError(t, (&Provider{}).Shutdown(context.Background()))
}

func TestEndSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil, "")
	_, failed := tracer.Start(context.Background(), "failed")
	EndSpan(failed, errors.New("boom"), "device")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NotEmpty(t, spans[1].Events())
}
