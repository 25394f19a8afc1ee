package gadget

import "github.com/kestrelcam/uvc-gadget/uvcproto"

// Kind identifies which variant of Endpoint is populated.
type Kind uint8

const (
	KindCapture Kind = iota
	KindFramebuffer
	KindImage
	KindUvcOutput
)

func (k Kind) String() string {
	switch k {
	case KindCapture:
		return "capture"
	case KindFramebuffer:
		return "framebuffer"
	case KindImage:
		return "image"
	case KindUvcOutput:
		return "uvc-output"
	default:
		return "unknown"
	}
}

// Endpoint is the tagged-variant data model of spec.md §3: exactly one of
// Capture, Framebuffer, Image, UvcOutput is non-nil, selected by Kind.
type Endpoint struct {
	Kind Kind

	Capture     *CaptureEndpoint
	Framebuffer *FramebufferEndpoint
	Image       *ImageEndpoint
	UvcOutput   *UvcOutputEndpoint
}

// Fd returns the endpoint's primary file descriptor, or -1 for a variant
// with no fd of its own to watch (Image, between reloads).
func (e *Endpoint) Fd() int {
	switch e.Kind {
	case KindCapture:
		return int(e.Capture.FD)
	case KindFramebuffer:
		return -1
	case KindImage:
		return -1
	case KindUvcOutput:
		return int(e.UvcOutput.FD)
	default:
		return -1
	}
}

// Processor exposes the UVC output endpoint's protocol engine, or nil for
// any other kind.
func (e *Endpoint) Processor() *uvcproto.Processor {
	if e.Kind != KindUvcOutput || e.UvcOutput == nil {
		return nil
	}
	return e.UvcOutput.Processor
}
