package gadget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "capture", KindCapture.String())
	require.Equal(t, "uvc-output", KindUvcOutput.String())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "streaming", StateStreaming.String())
}

// Invariant: the UVC-side outstanding-buffers gate holds off dequeuing
// until at least two buffers are queued ahead of any dequeue -- it opens
// only while dqbuf_count+1 < qbuf_count (spec.md §4.5; original_source/
// src/processing_v4l2_uvc.c's uvc_v4l2_video_process skips the dequeue on
// the complementary dqbuf_count+1 >= qbuf_count condition).
func TestOutstandingBuffersGate(t *testing.T) {
	u := &UvcOutputEndpoint{}
	require.False(t, u.OutstandingBuffersReady(), "0 queued, 0 dequeued: dqbuf+1 >= qbuf, gate closed")

	u.qbufCount = 1
	require.False(t, u.OutstandingBuffersReady(), "1 queued, 0 dequeued: dqbuf+1 >= qbuf, gate closed")

	u.qbufCount = 2
	require.True(t, u.OutstandingBuffersReady(), "2 queued, 0 dequeued: dqbuf+1 < qbuf, gate open")

	u.dqbufCount = 1
	require.False(t, u.OutstandingBuffersReady(), "2 queued, 1 dequeued: dqbuf+1 >= qbuf, gate closed again")
}

func TestSampleFrameRateRequiresFullWindow(t *testing.T) {
	u := &UvcOutputEndpoint{}
	start := time.Now()
	u.windowStart = start
	u.framesInWindow = 10

	rate, ok := u.SampleFrameRate(start.Add(time.Second))
	require.False(t, ok, "under 2s window must not sample")
	require.Zero(t, rate)

	rate, ok = u.SampleFrameRate(start.Add(2 * time.Second))
	require.True(t, ok)
	require.InDelta(t, 5.0, rate, 0.01)
	require.Zero(t, u.framesInWindow, "window resets after sampling")
}

func TestFramebufferPacing(t *testing.T) {
	fb := &FramebufferEndpoint{FrameRate: 10}
	now := time.Now()
	require.True(t, fb.ReadyToFill(now), "first call always fills")
	require.False(t, fb.ReadyToFill(now.Add(50*time.Millisecond)), "within the 100ms window")
	require.True(t, fb.ReadyToFill(now.Add(150*time.Millisecond)))
}

func TestCoordinatorLifecycleWithoutCapture(t *testing.T) {
	u := &UvcOutputEndpoint{}
	c := NewCoordinator(u, nil, 4, nil)
	require.Equal(t, StateIdle, c.State())

	c.state = StateBuffersReady
	c.NoteFirstBufferQueued()
	require.Equal(t, StateStreaming, c.State())
	require.True(t, c.FirstBuffered)
}

func TestCoordinatorDisconnectMarksShutdown(t *testing.T) {
	u := &UvcOutputEndpoint{}
	c := NewCoordinator(u, nil, 4, nil)
	c.state = StateIdle
	require.NoError(t, c.HandleDisconnect())
	require.True(t, c.ShutdownReq)
	require.Equal(t, StateIdle, c.State())
}
