package gadget

import (
	"fmt"

	"go.uber.org/zap"
)

// State is the lifecycle coordinator's state machine (spec.md §4.7):
// Idle -> BuffersReady -> Streaming -> Draining -> Idle.
type State uint8

const (
	StateIdle State = iota
	StateBuffersReady
	StateStreaming
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffersReady:
		return "buffers-ready"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// Coordinator reacts to UVC lifecycle events (STREAMON, STREAMOFF,
// DISCONNECT) and SIGINT/SIGTERM to allocate/free buffer rings and
// start/stop source and output streaming, per spec.md §4.7.
type Coordinator struct {
	log *zap.Logger

	Output         *UvcOutputEndpoint
	Capture        *CaptureEndpoint // nil for framebuffer/image sources
	BufferCount    uint32
	FirstBuffered  bool
	ShutdownReq    bool
	Terminate      bool

	state State
}

// NewCoordinator builds a Coordinator over output (and, for the
// capture-source variant, capture). log may be nil, in which case a no-op
// logger is used.
func NewCoordinator(output *UvcOutputEndpoint, capture *CaptureEndpoint, bufferCount uint32, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{log: log, Output: output, Capture: capture, BufferCount: bufferCount}
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State { return c.state }

// HandleStreamOn implements "Idle + STREAMON event -> request buffer ring
// ... stream-on ... set BuffersReady then Streaming once the first buffer
// is queued" (spec.md §4.7).
func (c *Coordinator) HandleStreamOn() error {
	if c.state != StateIdle {
		return nil
	}
	c.log.Info("uvc streamon", zap.Uint32("buffers", c.BufferCount))

	if c.Capture != nil {
		if err := c.Capture.AllocateRing(c.BufferCount); err != nil {
			return fmt.Errorf("gadget: lifecycle streamon: %w", err)
		}
		if err := c.Output.AllocateUserPtrRing(c.BufferCount); err != nil {
			return fmt.Errorf("gadget: lifecycle streamon: %w", err)
		}
		if err := c.Capture.StreamOn(); err != nil {
			return fmt.Errorf("gadget: lifecycle streamon: %w", err)
		}
	} else {
		if err := c.Output.AllocateMappedRing(c.BufferCount); err != nil {
			return fmt.Errorf("gadget: lifecycle streamon: %w", err)
		}
		for _, b := range c.Output.Ring.Buffers {
			if err := c.Output.QueueMapped(b.Index, 0); err != nil {
				return fmt.Errorf("gadget: lifecycle streamon: queue empty buffer: %w", err)
			}
		}
	}

	if err := c.Output.StreamOn(); err != nil {
		return fmt.Errorf("gadget: lifecycle streamon: %w", err)
	}

	c.state = StateBuffersReady
	c.FirstBuffered = false
	return nil
}

// NoteFirstBufferQueued transitions BuffersReady -> Streaming once the
// pipeline has queued its first real buffer.
func (c *Coordinator) NoteFirstBufferQueued() {
	if c.state == StateBuffersReady {
		c.state = StateStreaming
		c.FirstBuffered = true
	}
}

// HandleStreamOff implements "Streaming + STREAMOFF event or USB error
// during enqueue -> stream-off capture (if present), stream-off UVC,
// unmap and free rings, request 0 buffers on UVC, clear
// first-buffer-queued" (spec.md §4.7).
func (c *Coordinator) HandleStreamOff() error {
	if c.state == StateIdle {
		return nil
	}
	c.state = StateDraining
	c.log.Info("uvc streamoff")

	var firstErr error
	if c.Capture != nil {
		if err := c.Capture.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.Capture.Ring = nil
	}
	if err := c.Output.StreamOff(); err != nil && firstErr == nil {
		firstErr = err
	}
	if c.Output.Ring != nil {
		if err := c.Output.Ring.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.Output.Ring = nil
	}

	c.FirstBuffered = false
	c.state = StateIdle
	return firstErr
}

// HandleDisconnect implements "DISCONNECT -> same as STREAMOFF plus mark
// shutdown-requested" (spec.md §4.7).
func (c *Coordinator) HandleDisconnect() error {
	c.ShutdownReq = true
	return c.HandleStreamOff()
}

// HandleTerminateSignal implements "SIGINT/SIGTERM -> set the
// process-wide terminate flag; loop exits after the current iteration"
// (spec.md §4.7).
func (c *Coordinator) HandleTerminateSignal() {
	c.Terminate = true
}
