package pipeline

import (
	"fmt"
	"time"

	"github.com/kestrelcam/uvc-gadget/colorconv"
	"github.com/kestrelcam/uvc-gadget/gadget"
)

// FramebufferVariant converts the Linux framebuffer's pixels into YUYV on
// a paced interval, filling the UVC output ring directly (spec.md §4.5/
// §4.6). It has no source FD; the pacing window, not a readiness event,
// gates each fill.
type FramebufferVariant struct {
	Framebuffer *gadget.FramebufferEndpoint
}

func NewFramebufferVariant(fb *gadget.FramebufferEndpoint) *FramebufferVariant {
	return &FramebufferVariant{Framebuffer: fb}
}

func (v *FramebufferVariant) SourceFD() int { return -1 }

func (v *FramebufferVariant) GatesOnOutstandingBuffers() bool { return false }

func (v *FramebufferVariant) OnSourceReadable(out *gadget.UvcOutputEndpoint) error { return nil }

// OnOutputWritable dequeues an output buffer, converts the framebuffer
// into it when the pacing window has elapsed, and requeues it.
func (v *FramebufferVariant) OnOutputWritable(out *gadget.UvcOutputEndpoint) error {
	if !v.Framebuffer.ReadyToFill(time.Now()) {
		return nil
	}
	buf, _, err := out.Dequeue()
	if err != nil {
		return fmt.Errorf("pipeline: uvc output dequeue: %w", err)
	}
	fb := v.Framebuffer
	if err := colorconv.Convert(buf.Mem, fb.Mem, fb.Bpp, fb.Width, fb.Height); err != nil {
		return fmt.Errorf("pipeline: framebuffer convert: %w", err)
	}
	bytesUsed := uint32(fb.Width * fb.Height * 2)
	if err := out.QueueMapped(buf.Index, bytesUsed); err != nil {
		return fmt.Errorf("pipeline: uvc output queue: %w", err)
	}
	return nil
}

func (v *FramebufferVariant) PostIteration() error { return nil }
