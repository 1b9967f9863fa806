// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/ManuGH/playout/internal/device"
	"github.com/ManuGH/playout/internal/format"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOutput struct {
	mock.Mock
	cb device.ConsumedFunc
}

func (m *mockOutput) PushFrame(f device.Frame) error { return m.Called(f.Token).Error(0) }
func (m *mockOutput) Hold() error                    { return m.Called().Error(0) }
func (m *mockOutput) Halt() error                    { return m.Called().Error(0) }
func (m *mockOutput) Release() error                 { return m.Called().Error(0) }

func (m *mockOutput) Start(cb device.ConsumedFunc) error {
	m.cb = cb
	return m.Called().Error(0)
}

type stubDriver struct {
	out device.Output
	err error
}

func (d *stubDriver) Acquire(context.Context, int, format.DisplayMode, format.PixelFormat) (device.Output, error) {
	return d.out, d.err
}

func newMockSession(t *testing.T, out *mockOutput) *Session {
	t.Helper()
	s, err := New(&stubDriver{out: out}, 0, format.ModeHD1080i50, format.Format10BitYUV)
	require.NoError(t, err)
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s
}

func TestStart_PushPanicBecomesDeviceFault(t *testing.T) {
	ctx := context.Background()
	out := &mockOutput{}
	out.On("PushFrame", mock.Anything).Run(func(mock.Arguments) { panic("dma fault") })
	out.On("Halt").Return(nil)
	out.On("Release").Return(nil)

	s := newMockSession(t, out)
	c := collect(t, s)
	tok, err := s.SubmitFrame(ctx, []byte{1, 2, 3})
	require.NoError(t, err)

	err = s.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceFault)
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 1, s.Stats().Queued, "frame is requeued for the next attempt")

	s.Stop(ctx)
	want := []seen{{Kind: EventError, Token: tok, Op: "start"}, {Kind: EventDone}}
	if diff := cmp.Diff(want, project(c.wait(t))); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	out.AssertExpectations(t)
}

func TestStart_DeviceRefusesToStart(t *testing.T) {
	ctx := context.Background()
	out := &mockOutput{}
	out.On("Hold").Return(nil)
	out.On("Start").Return(errors.New("no reference signal")).Once()
	out.On("Start").Return(nil).Once()
	out.On("Halt").Return(nil)
	out.On("Release").Return(nil)

	s := newMockSession(t, out)
	require.NoError(t, s.EnsureInitialized(ctx))

	err := s.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reference signal")
	assert.Equal(t, StateReady, s.State())

	// The hold already went out, so a retry goes straight to Start.
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, StateRunning, s.State())
	out.AssertNumberOfCalls(t, "Hold", 1)
}

func TestDelivery_RejectedFrameDegradesSession(t *testing.T) {
	ctx := context.Background()
	out := &mockOutput{}
	s := newMockSession(t, out)
	c := collect(t, s)

	first, err := s.SubmitFrame(ctx, []byte{1})
	require.NoError(t, err)
	second, err := s.SubmitFrame(ctx, []byte{2})
	require.NoError(t, err)

	out.On("PushFrame", first).Return(nil)
	out.On("PushFrame", second).Return(&device.Error{Index: 0, Op: "push", Err: device.ErrRejected})
	out.On("Start").Return(nil)
	out.On("Hold").Return(nil)
	out.On("Halt").Return(nil)
	out.On("Release").Return(nil)

	require.NoError(t, s.Start(ctx))
	require.NotNil(t, out.cb)
	out.cb(first)

	st := s.Stats()
	assert.True(t, st.Degraded)
	assert.Equal(t, uint64(1), st.Rejected)
	assert.Equal(t, uint64(1), st.Errors)
	assert.Equal(t, StateRunning, st.State, "a rejected frame does not stop playback")

	s.Stop(ctx)
	want := []seen{
		{Kind: EventPlayed, Token: first},
		{Kind: EventError, Token: second, Op: "deliver"},
		{Kind: EventDone},
	}
	if diff := cmp.Diff(want, project(c.wait(t))); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	out.AssertCalled(t, "Hold")
}

func TestStop_ReleaseErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	out := &mockOutput{}
	out.On("Halt").Return(nil)
	out.On("Release").Return(errors.New("card vanished"))

	s := newMockSession(t, out)
	c := collect(t, s)
	require.NoError(t, s.EnsureInitialized(ctx))

	s.Stop(ctx)
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, []seen{{Kind: EventDone}}, project(c.wait(t)))
	out.AssertExpectations(t)
}

func TestStop_IgnoresLateCallbacks(t *testing.T) {
	ctx := context.Background()
	out := &mockOutput{}
	out.On("Hold").Return(nil)
	out.On("Start").Return(nil)
	out.On("Halt").Return(nil)
	out.On("Release").Return(nil)

	s := newMockSession(t, out)
	c := collect(t, s)
	require.NoError(t, s.EnsureInitialized(ctx))
	require.NoError(t, s.Start(ctx))
	s.Stop(ctx)

	// A driver that keeps calling after Halt must not produce events.
	out.cb(device.NoToken)
	assert.Equal(t, []seen{{Kind: EventUnderrun}, {Kind: EventDone}}, project(c.wait(t)))
}

func TestEnsureInitialized_NilOutput(t *testing.T) {
	s, err := New(&stubDriver{}, 0, format.ModeHD1080i50, format.Format10BitYUV)
	require.NoError(t, err)
	defer s.Stop(context.Background())

	err = s.EnsureInitialized(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Equal(t, StateUninitialized, s.State())
}
