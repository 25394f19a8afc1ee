package pipeline

import (
	"errors"
	"testing"

	"github.com/kestrelcam/uvc-gadget/gadget"
	"github.com/kestrelcam/uvc-gadget/v4l2"
	"github.com/stretchr/testify/require"
)

var (
	_ Variant = (*CaptureVariant)(nil)
	_ Variant = (*FramebufferVariant)(nil)
	_ Variant = (*ImageVariant)(nil)
)

func TestVariantGatingAndSourceFD(t *testing.T) {
	cap := &CaptureVariant{Capture: &gadget.CaptureEndpoint{}}
	require.True(t, cap.GatesOnOutstandingBuffers())

	fb := &FramebufferVariant{Framebuffer: &gadget.FramebufferEndpoint{}}
	require.False(t, fb.GatesOnOutstandingBuffers())
	require.Equal(t, -1, fb.SourceFD())

	img := &ImageVariant{Image: &gadget.ImageEndpoint{}}
	require.False(t, img.GatesOnOutstandingBuffers())
	require.Equal(t, -1, img.SourceFD())
}

func TestErrIsAgainMatchesTemporary(t *testing.T) {
	require.True(t, errIsAgain(v4l2.ErrorTemporary))
	require.False(t, errIsAgain(errors.New("boom")))
}
