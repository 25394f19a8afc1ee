package daemon

import "fmt"

// Options is the CLI surface spec.md §6 names: source selector, output
// device, buffer count, framebuffer framerate, debug/FPS/LED flags.
type Options struct {
	CapturePath     string
	FramebufferPath string
	ImagePath       string

	UvcDevice         string
	GadgetFunctionDir string

	BufferCount uint32

	FramebufferFPS        int
	FramebufferWidth      int
	FramebufferHeight     int
	FramebufferBpp        int
	FramebufferLineLength int

	Debug          bool
	FPS            bool
	BlinkOnStartup int
}

// Validate enforces the ranges and mutual-exclusion rules spec.md §6
// names for the CLI surface.
func (o *Options) Validate() error {
	sources := 0
	if o.CapturePath != "" {
		sources++
	}
	if o.FramebufferPath != "" {
		sources++
	}
	if o.ImagePath != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --capture-device, --framebuffer, --image is required")
	}

	if o.UvcDevice == "" {
		return fmt.Errorf("--uvc-device is required")
	}
	if o.GadgetFunctionDir == "" {
		return fmt.Errorf("--gadget-function-dir is required")
	}
	if o.BufferCount < 2 || o.BufferCount > 32 {
		return fmt.Errorf("--buffers must be between 2 and 32, got %d", o.BufferCount)
	}
	if o.FramebufferFPS < 1 || o.FramebufferFPS > 60 {
		return fmt.Errorf("--framebuffer-fps must be between 1 and 60, got %d", o.FramebufferFPS)
	}
	if o.BlinkOnStartup != 0 && (o.BlinkOnStartup < 1 || o.BlinkOnStartup > 20) {
		return fmt.Errorf("--blink-on-startup must be between 1 and 20 (or 0 to disable), got %d", o.BlinkOnStartup)
	}

	if o.FramebufferPath != "" {
		if o.FramebufferWidth <= 0 || o.FramebufferHeight <= 0 {
			return fmt.Errorf("--framebuffer-width and --framebuffer-height are required with --framebuffer")
		}
		switch o.FramebufferBpp {
		case 16, 24, 32:
		default:
			return fmt.Errorf("--framebuffer-bpp must be 16, 24, or 32, got %d", o.FramebufferBpp)
		}
	}
	return nil
}

// lineLength returns the configured stride, or the natural width*bpp/8
// stride when unset.
func (o *Options) lineLength() int {
	if o.FramebufferLineLength > 0 {
		return o.FramebufferLineLength
	}
	return o.FramebufferWidth * o.FramebufferBpp / 8
}
