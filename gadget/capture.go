package gadget

import (
	"fmt"
	sys "syscall"

	"github.com/kestrelcam/uvc-gadget/v4l2"
)

// CaptureEndpoint is the V4L2 capture-device source variant (spec.md §3
// Endpoint.Capture): a memory-mapped buffer ring dequeued on its own fd
// and handed, by reference, to the UVC output endpoint.
type CaptureEndpoint struct {
	Path   string
	FD     uintptr
	Ring   *Ring
	Format v4l2.PixFormat

	streaming bool
	qbufCount uint64
	dqbufCount uint64
}

// OpenCapture opens a V4L2 capture device node, verifies it streams video
// capture, and applies pixFmt if non-zero (otherwise the device's current
// format is read back).
func OpenCapture(path string, pixFmt v4l2.PixFormat) (*CaptureEndpoint, error) {
	fd, err := v4l2.OpenDevice(path, sys.O_RDWR|sys.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("gadget: open capture %s: %w", path, err)
	}

	cap, err := v4l2.GetCapability(fd)
	if err != nil {
		_ = v4l2.CloseDevice(fd)
		return nil, fmt.Errorf("gadget: capture %s capability: %w", path, err)
	}
	if !cap.IsVideoCaptureSupported() {
		_ = v4l2.CloseDevice(fd)
		return nil, fmt.Errorf("gadget: %s does not support video capture", path)
	}

	if pixFmt != (v4l2.PixFormat{}) {
		if err := v4l2.SetPixFormat(fd, pixFmt); err != nil {
			_ = v4l2.CloseDevice(fd)
			return nil, fmt.Errorf("gadget: capture %s set format: %w", path, err)
		}
	}
	format, err := v4l2.GetPixFormat(fd)
	if err != nil {
		_ = v4l2.CloseDevice(fd)
		return nil, fmt.Errorf("gadget: capture %s get format: %w", path, err)
	}

	return &CaptureEndpoint{Path: path, FD: fd, Format: format}, nil
}

// Close stops streaming (if active), tears down the buffer ring, and
// closes the device.
func (c *CaptureEndpoint) Close() error {
	if c.streaming {
		_ = c.StreamOff()
	}
	if c.Ring != nil {
		if err := c.Ring.Close(); err != nil {
			return err
		}
		c.Ring = nil
	}
	return v4l2.CloseDevice(c.FD)
}

// AllocateRing requests and maps count capture buffers, then pre-queues
// every one of them empty (spec.md §4.7 "request ring on capture,
// pre-queue all capture buffers").
func (c *CaptureEndpoint) AllocateRing(count uint32) error {
	ring, err := NewMappedRing(c.FD, v4l2.BufTypeVideoCapture, count)
	if err != nil {
		return fmt.Errorf("gadget: capture ring: %w", err)
	}
	c.Ring = ring
	for _, b := range ring.Buffers {
		if _, err := ring.Queue(b.Index); err != nil {
			return fmt.Errorf("gadget: capture pre-queue buffer %d: %w", b.Index, err)
		}
		c.qbufCount++
	}
	return nil
}

// StreamOn starts capture streaming.
func (c *CaptureEndpoint) StreamOn() error {
	if err := v4l2.StreamOn(c.FD, v4l2.BufTypeVideoCapture); err != nil {
		return fmt.Errorf("gadget: capture stream on: %w", err)
	}
	c.streaming = true
	return nil
}

// StreamOff stops capture streaming.
func (c *CaptureEndpoint) StreamOff() error {
	if err := v4l2.StreamOff(c.FD, v4l2.BufTypeVideoCapture); err != nil {
		return fmt.Errorf("gadget: capture stream off: %w", err)
	}
	c.streaming = false
	return nil
}

// Dequeue dequeues the next ready capture buffer (source FD readable).
func (c *CaptureEndpoint) Dequeue() (*Buffer, error) {
	b, _, err := c.Ring.Dequeue()
	if err != nil {
		return nil, err
	}
	c.dqbufCount++
	return b, nil
}

// Requeue re-queues a buffer previously handed to the UVC output endpoint
// and now returned, so the capture device can fill it again.
func (c *CaptureEndpoint) Requeue(index uint32) error {
	if _, err := c.Ring.Queue(index); err != nil {
		return fmt.Errorf("gadget: capture requeue buffer %d: %w", index, err)
	}
	c.qbufCount++
	return nil
}
