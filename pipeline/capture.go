package pipeline

import (
	"fmt"

	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/gadget"
	"github.com/kestrelcam/uvc-gadget/v4l2"
)

// CaptureVariant is the zero-copy capture-to-UVC pipeline (spec.md §4.5):
// a dequeued capture buffer is handed straight to the UVC output ring by
// user-pointer, with the same index and length, and only requeued to the
// capture device once the host has finished reading it.
type CaptureVariant struct {
	Capture *gadget.CaptureEndpoint
	Source  controlmap.Source // nil if capture controls are not discoverable
}

func NewCaptureVariant(capture *gadget.CaptureEndpoint, src controlmap.Source) *CaptureVariant {
	return &CaptureVariant{Capture: capture, Source: src}
}

func (v *CaptureVariant) SourceFD() int { return int(v.Capture.FD) }

func (v *CaptureVariant) GatesOnOutstandingBuffers() bool { return true }

// OnSourceReadable dequeues a filled capture buffer and hands it to the
// UVC output ring via user-pointer, pointing at the capture buffer's own
// memory (spec.md §4.5 zero-copy handoff).
func (v *CaptureVariant) OnSourceReadable(out *gadget.UvcOutputEndpoint) error {
	buf, err := v.Capture.Dequeue()
	if err != nil {
		return fmt.Errorf("pipeline: capture dequeue: %w", err)
	}
	if err := out.QueueUserPtr(buf.Index, buf.Mem[:buf.BytesUsed]); err != nil {
		return fmt.Errorf("pipeline: uvc output queue: %w", err)
	}
	return nil
}

// OnOutputWritable dequeues a buffer the host has finished reading and
// requeues its index back to the capture device so it can be filled
// again.
func (v *CaptureVariant) OnOutputWritable(out *gadget.UvcOutputEndpoint) error {
	buf, raw, err := out.Dequeue()
	if err != nil {
		return fmt.Errorf("pipeline: uvc output dequeue: %w", err)
	}
	if raw.Flags&v4l2.BufFlagError != 0 {
		return fmt.Errorf("pipeline: uvc output buffer %d reported error", buf.Index)
	}
	if err := v.Capture.Requeue(buf.Index); err != nil {
		return fmt.Errorf("pipeline: capture requeue: %w", err)
	}
	return nil
}

func (v *CaptureVariant) PostIteration() error { return nil }

func (v *CaptureVariant) ControlSource() controlmap.Source { return v.Source }
