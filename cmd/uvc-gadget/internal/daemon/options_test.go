package daemon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	return Options{
		CapturePath:       "/dev/video0",
		UvcDevice:         "/dev/video1",
		GadgetFunctionDir: "/sys/kernel/config/usb_gadget/g1/functions/uvc.usb0",
		BufferCount:       4,
		FramebufferFPS:    15,
	}
}

func TestValidateRequiresExactlyOneSource(t *testing.T) {
	o := validOptions()
	o.FramebufferPath = "/dev/fb0"
	require.Error(t, o.Validate(), "capture and framebuffer both set must fail")

	o2 := Options{UvcDevice: "/dev/video1", GadgetFunctionDir: "x", BufferCount: 4, FramebufferFPS: 15}
	require.Error(t, o2.Validate(), "no source set must fail")
}

func TestValidateBufferCountRange(t *testing.T) {
	o := validOptions()
	o.BufferCount = 1
	require.Error(t, o.Validate())
	o.BufferCount = 33
	require.Error(t, o.Validate())
	o.BufferCount = 2
	require.NoError(t, o.Validate())
}

func TestValidateFramebufferRequiresDimensions(t *testing.T) {
	o := Options{
		FramebufferPath:   "/dev/fb0",
		UvcDevice:         "/dev/video1",
		GadgetFunctionDir: "x",
		BufferCount:       4,
		FramebufferFPS:    15,
		FramebufferBpp:    32,
	}
	require.Error(t, o.Validate(), "missing width/height must fail")

	o.FramebufferWidth = 640
	o.FramebufferHeight = 480
	require.NoError(t, o.Validate())
}

func TestValidateBlinkOnStartupRange(t *testing.T) {
	o := validOptions()
	o.BlinkOnStartup = 21
	require.Error(t, o.Validate())
	o.BlinkOnStartup = 0
	require.NoError(t, o.Validate())
	o.BlinkOnStartup = 5
	require.NoError(t, o.Validate())
}

func TestLineLengthDefaultsFromWidthAndBpp(t *testing.T) {
	o := Options{FramebufferWidth: 640, FramebufferBpp: 32}
	require.Equal(t, 2560, o.lineLength())
	o.FramebufferLineLength = 3000
	require.Equal(t, 3000, o.lineLength())
}
