package gadget

import (
	"fmt"
	sys "syscall"
	"time"

	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/uvcproto"
	"github.com/kestrelcam/uvc-gadget/v4l2"
)

// UvcOutputEndpoint is the UVC gadget video-output variant (spec.md §3
// Endpoint.UvcOutput): the buffer ring handed frames to send to the host,
// the UVC control-pipe protocol engine, and the FPS/timing bookkeeping
// the pipeline loop needs.
type UvcOutputEndpoint struct {
	Path string
	FD   uintptr

	Ring      *Ring
	Processor *uvcproto.Processor

	streaming      bool
	qbufCount      uint64
	dqbufCount     uint64
	lastFrameTime  time.Time
	framesInWindow uint64
	windowStart    time.Time
	lastRateHz     float64
}

// OpenUvcOutput opens the UVC gadget function's video device node,
// subscribes to the four events the daemon needs (spec.md §6), and builds
// its request processor over table/formats.
func OpenUvcOutput(path string, table controlmap.Table, formats []uvcproto.FrameFormat, maxPayloadTransferSize uint32) (*UvcOutputEndpoint, error) {
	fd, err := v4l2.OpenDevice(path, sys.O_RDWR|sys.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("gadget: open uvc output %s: %w", path, err)
	}

	cap, err := v4l2.GetCapability(fd)
	if err != nil {
		_ = v4l2.CloseDevice(fd)
		return nil, fmt.Errorf("gadget: uvc output %s capability: %w", path, err)
	}
	if !cap.IsVideoOutputSupported() {
		_ = v4l2.CloseDevice(fd)
		return nil, fmt.Errorf("gadget: %s does not support video output", path)
	}

	for _, evt := range []v4l2.EventType{
		v4l2.UVCEventSetup, v4l2.UVCEventData,
		v4l2.UVCEventStreamOn, v4l2.UVCEventStreamOff,
	} {
		if err := v4l2.SubscribeEvent(fd, v4l2.NewUVCEventSubscription(evt)); err != nil {
			_ = v4l2.CloseDevice(fd)
			return nil, fmt.Errorf("gadget: subscribe %s: %w", v4l2.UVCEventTypeNames[evt], err)
		}
	}

	return &UvcOutputEndpoint{
		Path:      path,
		FD:        fd,
		Processor: uvcproto.NewProcessor(table, formats, maxPayloadTransferSize),
	}, nil
}

// Close stops streaming (if active), tears down the buffer ring, and
// closes the device.
func (u *UvcOutputEndpoint) Close() error {
	if u.streaming {
		_ = u.StreamOff()
	}
	if u.Ring != nil {
		if err := u.Ring.Close(); err != nil {
			return err
		}
		u.Ring = nil
	}
	return v4l2.CloseDevice(u.FD)
}

// AllocateMappedRing allocates count mmap'd output buffers -- used by the
// framebuffer/image pipeline variants, which fill buffer memory directly.
func (u *UvcOutputEndpoint) AllocateMappedRing(count uint32) error {
	ring, err := NewMappedRing(u.FD, v4l2.BufTypeVideoOutput, count)
	if err != nil {
		return fmt.Errorf("gadget: uvc output mapped ring: %w", err)
	}
	u.Ring = ring
	return nil
}

// AllocateUserPtrRing requests count user-pointer output buffer slots --
// used by the capture-source pipeline variant, where each buffer points
// at the capture ring's own memory instead of owning any (spec.md §3/§4.5
// zero-copy handoff).
func (u *UvcOutputEndpoint) AllocateUserPtrRing(count uint32) error {
	ring, err := NewUserPtrRing(u.FD, v4l2.BufTypeVideoOutput, count)
	if err != nil {
		return fmt.Errorf("gadget: uvc output user-ptr ring: %w", err)
	}
	u.Ring = ring
	return nil
}

// StreamOn starts UVC output streaming.
func (u *UvcOutputEndpoint) StreamOn() error {
	if err := v4l2.StreamOn(u.FD, v4l2.BufTypeVideoOutput); err != nil {
		return fmt.Errorf("gadget: uvc output stream on: %w", err)
	}
	u.streaming = true
	return nil
}

// StreamOff stops UVC output streaming.
func (u *UvcOutputEndpoint) StreamOff() error {
	if err := v4l2.StreamOff(u.FD, v4l2.BufTypeVideoOutput); err != nil {
		return fmt.Errorf("gadget: uvc output stream off: %w", err)
	}
	u.streaming = false
	return nil
}

// QueueMapped enqueues a previously-filled mmap'd buffer back to the
// driver, after recording bytesUsed.
func (u *UvcOutputEndpoint) QueueMapped(index uint32, bytesUsed uint32) error {
	buf := &u.Ring.Buffers[index]
	buf.BytesUsed = bytesUsed
	if _, err := v4l2.QueueBuffer(u.FD, v4l2.BufTypeVideoOutput, v4l2.IOTypeMMAP, index, 0, bytesUsed); err != nil {
		return fmt.Errorf("gadget: uvc output queue buffer %d: %w", index, err)
	}
	u.qbufCount++
	u.recordFrame()
	return nil
}

// QueueUserPtr enqueues index pointing at a capture buffer's memory
// (zero-copy capture-to-output path).
func (u *UvcOutputEndpoint) QueueUserPtr(index uint32, mem []byte) error {
	if _, err := u.Ring.QueueUserPtr(index, mem); err != nil {
		return fmt.Errorf("gadget: uvc output queue user-ptr buffer %d: %w", index, err)
	}
	u.qbufCount++
	u.recordFrame()
	return nil
}

// Dequeue dequeues the next completed output buffer (host finished
// reading it).
func (u *UvcOutputEndpoint) Dequeue() (*Buffer, v4l2.Buffer, error) {
	b, raw, err := u.Ring.Dequeue()
	if err != nil {
		return nil, raw, err
	}
	u.dqbufCount++
	return b, raw, nil
}

// OutstandingBuffersReady implements spec.md §4.5's gate: dequeuing on the
// UVC side is held off until enough buffers are outstanding, i.e. until
// `dqbuf_count + 1 >= qbuf_count` no longer holds (original_source/src/
// processing_v4l2_uvc.c's uvc_v4l2_video_process skips the dequeue on
// that condition) -- so dequeuing is permitted only while
// `dqbuf_count + 1 < qbuf_count`, which requires at least two buffers
// queued ahead of any dequeue.
func (u *UvcOutputEndpoint) OutstandingBuffersReady() bool {
	return u.dqbufCount+1 < u.qbufCount
}

func (u *UvcOutputEndpoint) recordFrame() {
	now := time.Now()
	u.lastFrameTime = now
	if u.windowStart.IsZero() {
		u.windowStart = now
	}
	u.framesInWindow++
}

// SampleFrameRate implements the FPS instrumentation in spec.md §5
// ("buffers_processed sampled every 2s and emits a rate"). Call it once
// per loop iteration; it returns a rate and true only when a full
// 2-second window has elapsed, resetting the window afterward.
func (u *UvcOutputEndpoint) SampleFrameRate(now time.Time) (float64, bool) {
	if u.windowStart.IsZero() || now.Sub(u.windowStart) < 2*time.Second {
		return 0, false
	}
	elapsed := now.Sub(u.windowStart).Seconds()
	rate := float64(u.framesInWindow) / elapsed
	u.lastRateHz = rate
	u.framesInWindow = 0
	u.windowStart = now
	return rate, true
}
