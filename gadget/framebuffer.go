package gadget

import (
	"fmt"
	"os"
	"time"

	sys "golang.org/x/sys/unix"
)

// FramebufferEndpoint is the Linux framebuffer source variant (spec.md §3
// Endpoint.Framebuffer): a memory-mapped /dev/fbN, read at a paced
// interval and converted into YUYV by the colorconv package (§4.6).
type FramebufferEndpoint struct {
	Path       string
	Mem        []byte
	Width      int
	Height     int
	Bpp        int
	LineLength int
	FrameRate  int // frames per second, 1-60

	file     *os.File
	lastFill time.Time
}

// OpenFramebuffer memory-maps the framebuffer device at path. width,
// height, bpp, and lineLength describe the fixed/variable screen info a
// real deployment would read from FBIOGET_VSCREENINFO/FBIOGET_FSCREENINFO;
// this daemon is handed them directly since ioctl decoding of those
// structures is out of this spec's core (spec.md §6 lists only kernel
// device I/O for V4L2, not fbdev).
func OpenFramebuffer(path string, width, height, bpp, lineLength, frameRate int) (*FramebufferEndpoint, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("gadget: open framebuffer %s: %w", path, err)
	}

	size := lineLength * height
	mem, err := sys.Mmap(int(f.Fd()), 0, size, sys.PROT_READ|sys.PROT_WRITE, sys.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gadget: mmap framebuffer %s: %w", path, err)
	}

	return &FramebufferEndpoint{
		Path: path, Mem: mem, Width: width, Height: height,
		Bpp: bpp, LineLength: lineLength, FrameRate: frameRate, file: f,
	}, nil
}

// Close unmaps the framebuffer and closes its file.
func (fb *FramebufferEndpoint) Close() error {
	if fb.Mem != nil {
		if err := sys.Munmap(fb.Mem); err != nil {
			return err
		}
		fb.Mem = nil
	}
	return fb.file.Close()
}

// Interval is the wall-clock pacing window for one conversion, derived
// from FrameRate (spec.md §4.5 "Paced: only one conversion per
// frame_interval wall-clock window").
func (fb *FramebufferEndpoint) Interval() time.Duration {
	if fb.FrameRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(fb.FrameRate)
}

// ReadyToFill reports whether the pacing window has elapsed since the
// last fill, and if so records now as the new last-fill time.
func (fb *FramebufferEndpoint) ReadyToFill(now time.Time) bool {
	if now.Sub(fb.lastFill) < fb.Interval() {
		return false
	}
	fb.lastFill = now
	return true
}
