package pipeline

import (
	"fmt"
	"time"

	"github.com/kestrelcam/uvc-gadget/gadget"
)

// ImageVariant serves a single cached image payload, paced like the
// framebuffer variant, reloading the payload whenever the backing file
// changes (spec.md §4.5/§6).
type ImageVariant struct {
	Image *gadget.ImageEndpoint
}

func NewImageVariant(img *gadget.ImageEndpoint) *ImageVariant {
	return &ImageVariant{Image: img}
}

func (v *ImageVariant) SourceFD() int { return -1 }

func (v *ImageVariant) GatesOnOutstandingBuffers() bool { return false }

func (v *ImageVariant) OnSourceReadable(out *gadget.UvcOutputEndpoint) error { return nil }

// OnOutputWritable dequeues an output buffer, copies the cached payload
// into it when the pacing window has elapsed, and requeues it.
func (v *ImageVariant) OnOutputWritable(out *gadget.UvcOutputEndpoint) error {
	if !v.Image.ReadyToFill(time.Now()) {
		return nil
	}
	buf, _, err := out.Dequeue()
	if err != nil {
		return fmt.Errorf("pipeline: uvc output dequeue: %w", err)
	}
	n := copy(buf.Mem, v.Image.Payload)
	if err := out.QueueMapped(buf.Index, uint32(n)); err != nil {
		return fmt.Errorf("pipeline: uvc output queue: %w", err)
	}
	return nil
}

// PostIteration drains the image watcher's pending reload notifications.
func (v *ImageVariant) PostIteration() error {
	if _, err := v.Image.PollReload(); err != nil {
		return fmt.Errorf("pipeline: image reload: %w", err)
	}
	return nil
}
