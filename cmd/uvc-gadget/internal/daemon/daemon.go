// Package daemon wires the configfs, controlmap, gadget, and pipeline
// packages together into the running UVC gadget bridge the uvc-gadget
// command starts, per spec.md §6's CLI surface and §9's wiring notes.
package daemon

import (
	"fmt"

	"github.com/kestrelcam/uvc-gadget/configfs"
	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/device"
	"github.com/kestrelcam/uvc-gadget/gadget"
	"github.com/kestrelcam/uvc-gadget/pipeline"
	"github.com/kestrelcam/uvc-gadget/v4l2"
	"go.uber.org/zap"
)

// defaultMaxPayloadTransferSize is maxpacket*(mult+1)*(burst+1) for a
// single USB high-speed isochronous packet (1024 bytes, no additional
// transactions per microframe) -- a conservative default absent a real
// negotiator (spec.md §3 notes this value comes from an external
// negotiator).
const defaultMaxPayloadTransferSize = 1024

// Daemon owns every long-lived resource the pipeline loop needs and the
// lifecycle coordinator driving it.
type Daemon struct {
	log *zap.Logger

	captureDevice *device.Device // control-discovery handle; nil for framebuffer/image sources
	capture       *gadget.CaptureEndpoint
	framebuffer   *gadget.FramebufferEndpoint
	image         *gadget.ImageEndpoint
	output        *gadget.UvcOutputEndpoint

	coordinator *gadget.Coordinator
	loop        *pipeline.Loop
}

// New opens every device opts names, discovers the frame-format table,
// and builds the pipeline loop, but does not start streaming -- that
// happens on the host's first STREAMON, handled inside Run.
func New(opts Options, log *zap.Logger) (*Daemon, error) {
	formats, err := configfs.DiscoverFrameFormats(opts.GadgetFunctionDir)
	if err != nil {
		return nil, fmt.Errorf("discover frame formats: %w", err)
	}

	table := controlmap.DefaultTable()

	d := &Daemon{log: log}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	var variant pipeline.Variant
	var controlSource controlmap.Source

	switch {
	case opts.CapturePath != "":
		dev, err := device.Open(opts.CapturePath)
		if err != nil {
			return nil, fmt.Errorf("open capture control device: %w", err)
		}
		d.captureDevice = dev
		if err := controlmap.Discover(dev, table); err != nil {
			return nil, fmt.Errorf("discover capture controls: %w", err)
		}
		controlSource = dev

		capture, err := gadget.OpenCapture(opts.CapturePath, v4l2.PixFormat{})
		if err != nil {
			return nil, fmt.Errorf("open capture buffer endpoint: %w", err)
		}
		d.capture = capture
		variant = pipeline.NewCaptureVariant(capture, controlSource)

	case opts.FramebufferPath != "":
		fb, err := gadget.OpenFramebuffer(opts.FramebufferPath, opts.FramebufferWidth, opts.FramebufferHeight, opts.FramebufferBpp, opts.lineLength(), opts.FramebufferFPS)
		if err != nil {
			return nil, fmt.Errorf("open framebuffer: %w", err)
		}
		d.framebuffer = fb
		variant = pipeline.NewFramebufferVariant(fb)

	case opts.ImagePath != "":
		img, err := gadget.OpenImage(opts.ImagePath, opts.FramebufferFPS)
		if err != nil {
			return nil, fmt.Errorf("open image: %w", err)
		}
		d.image = img
		variant = pipeline.NewImageVariant(img)
	}

	output, err := gadget.OpenUvcOutput(opts.UvcDevice, table, formats, defaultMaxPayloadTransferSize)
	if err != nil {
		return nil, fmt.Errorf("open uvc output: %w", err)
	}
	d.output = output

	d.coordinator = gadget.NewCoordinator(output, d.capture, opts.BufferCount, log)

	loop := pipeline.NewLoop(d.coordinator, output, variant, log)
	loop.FPSEnabled = opts.FPS
	loop.Debug = opts.Debug
	if opts.BlinkOnStartup > 0 {
		loop.OnIteration = startupBlinker(opts.BlinkOnStartup, log)
	}
	d.loop = loop

	ok = true
	return d, nil
}

// Run drives the pipeline loop until Terminate is called or an
// unrecoverable error occurs.
func (d *Daemon) Run() error {
	return d.loop.Run()
}

// Terminate requests a clean shutdown; the loop exits after its current
// iteration (spec.md §4.7 "SIGINT/SIGTERM -> set the process-wide
// terminate flag").
func (d *Daemon) Terminate() {
	d.coordinator.HandleTerminateSignal()
}

// Close tears down every device this daemon opened.
func (d *Daemon) Close() error {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.output != nil {
		note(d.output.Close())
	}
	if d.capture != nil {
		note(d.capture.Close())
	}
	if d.captureDevice != nil {
		note(d.captureDevice.Close())
	}
	if d.framebuffer != nil {
		note(d.framebuffer.Close())
	}
	if d.image != nil {
		note(d.image.Close())
	}
	return firstErr
}
