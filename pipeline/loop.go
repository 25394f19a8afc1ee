package pipeline

import (
	"errors"
	"time"

	"github.com/kestrelcam/uvc-gadget/gadget"
	"github.com/kestrelcam/uvc-gadget/v4l2"
	"go.uber.org/zap"
)

// sleepFloor is the coarse jitter floor slept once per iteration (spec.md
// §4.5 step 1).
const sleepFloor = time.Millisecond

// activeTimeout is the select timeout used while the source is active;
// an idle source blocks without a timeout (spec.md §4.5 step 3).
const activeTimeout = time.Second

// Variant supplies the per-source-kind behavior the loop skeleton calls
// into: pushing a frame on output-writable, and any post-iteration work
// (image-file reload polling, paced-fill bookkeeping).
type Variant interface {
	// SourceFD returns the file descriptor to watch for readability, or
	// -1 if this variant has none (framebuffer, image between reloads).
	SourceFD() int
	// OnSourceReadable is called when SourceFD is readable.
	OnSourceReadable(out *gadget.UvcOutputEndpoint) error
	// OnOutputWritable is called when the UVC output FD is writable and,
	// for variants that gate on outstanding buffers, the gate is open.
	OnOutputWritable(out *gadget.UvcOutputEndpoint) error
	// PostIteration runs once per loop iteration regardless of readiness
	// (image-file-watch polling, pacing bookkeeping).
	PostIteration() error
	// GatesOnOutstandingBuffers reports whether OnOutputWritable should
	// only run when gadget.UvcOutputEndpoint.OutstandingBuffersReady()
	// holds (true for the capture variant, false for framebuffer/image,
	// whose fills are paced by their own frame-rate window instead).
	GatesOnOutstandingBuffers() bool
}

// Loop is the cooperative select-loop skeleton shared by all three
// pipeline variants (spec.md §4.5 "Common skeleton").
type Loop struct {
	log         *zap.Logger
	Coordinator *gadget.Coordinator
	Output      *gadget.UvcOutputEndpoint
	Variant     Variant

	// FPSEnabled turns on the 2s frame-rate log (spec.md §5 Timing,
	// §12 supplemented "FPS instrumentation").
	FPSEnabled bool
	// Debug turns on per-SETUP-packet field tracing (spec.md §12
	// supplemented "Per-request debug tracing").
	Debug bool
	// OnIteration is an optional hook run once per iteration after UVC
	// event and frame processing -- the status-LED blink point (spec.md
	// §1 lists LED blinking as an out-of-scope collaborator; this hook
	// is the seam a caller wires a real GPIO driver into, left a no-op
	// by default).
	OnIteration func()
}

// NewLoop builds a Loop. log may be nil for a no-op logger.
func NewLoop(coord *gadget.Coordinator, output *gadget.UvcOutputEndpoint, variant Variant, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{log: log, Coordinator: coord, Output: output, Variant: variant}
}

// Run executes the select loop until the coordinator's Terminate flag is
// set or an unrecoverable error occurs.
func (l *Loop) Run() error {
	for !l.Coordinator.Terminate {
		if err := l.iterate(); err != nil {
			if errors.Is(err, errLoopDone) {
				return nil
			}
			return err
		}
	}
	return nil
}

var errLoopDone = errors.New("pipeline: loop done")

// iterate runs exactly one pass of the common skeleton (spec.md §4.5).
func (l *Loop) iterate() error {
	time.Sleep(sleepFloor)

	sourceFD := -1
	streaming := l.Coordinator.State() == gadget.StateStreaming || l.Coordinator.State() == gadget.StateBuffersReady
	if streaming {
		sourceFD = l.Variant.SourceFD()
	}

	timeout := time.Duration(0)
	if streaming {
		timeout = activeTimeout
	}

	sourceReadable, outputWritable, outputException, timedOut, err := v4l2.WaitForReadWriteException(sourceFD, int(l.Output.FD), timeout)
	if err != nil {
		if errors.Is(err, v4l2.ErrorInterrupted) {
			return nil
		}
		return err
	}
	if timedOut {
		l.log.Info("pipeline idle timeout, exiting")
		return errLoopDone
	}

	if outputException {
		if err := l.processEvents(); err != nil {
			return err
		}
	}

	if outputWritable {
		gateOpen := !l.Variant.GatesOnOutstandingBuffers() || l.Output.OutstandingBuffersReady() || l.Coordinator.ShutdownReq
		if gateOpen {
			if err := l.Variant.OnOutputWritable(l.Output); err != nil {
				return err
			}
			l.Coordinator.NoteFirstBufferQueued()
		}
	}

	if sourceReadable {
		if err := l.Variant.OnSourceReadable(l.Output); err != nil {
			return err
		}
		l.Coordinator.NoteFirstBufferQueued()
	}

	if err := l.Variant.PostIteration(); err != nil {
		return err
	}

	if l.FPSEnabled {
		if rate, ok := l.Output.SampleFrameRate(time.Now()); ok {
			l.log.Info("frame rate", zap.Float64("fps", rate))
		}
	}
	if l.OnIteration != nil {
		l.OnIteration()
	}

	return nil
}
