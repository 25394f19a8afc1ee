package gadget

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ImageEndpoint is the static-image source variant (spec.md §3
// Endpoint.Image): a single cached payload reloaded whenever the watcher
// reports a write or create event on the backing file. No close-write
// event is watched, so a reload can read a file that is still being written.
type ImageEndpoint struct {
	Path      string
	Payload   []byte
	Watcher   *fsnotify.Watcher
	FrameRate int

	lastFill time.Time
}

// OpenImage reads path into the cached payload and starts an fsnotify
// watch on it; PollReload reloads on the watch's write and create events.
func OpenImage(path string, frameRate int) (*ImageEndpoint, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gadget: read image %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gadget: image watcher %s: %w", path, err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("gadget: watch image %s: %w", path, err)
	}

	return &ImageEndpoint{Path: path, Payload: payload, Watcher: w, FrameRate: frameRate}, nil
}

// Close stops the file watch.
func (img *ImageEndpoint) Close() error {
	return img.Watcher.Close()
}

// PollReload drains the watcher's event channel and reloads Payload on
// any write/create event, per spec.md §4.5 "on change, reload the file
// into the single cached payload". Reports whether a reload happened.
func (img *ImageEndpoint) PollReload() (bool, error) {
	reloaded := false
	for {
		select {
		case ev, ok := <-img.Watcher.Events:
			if !ok {
				return reloaded, nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			payload, err := os.ReadFile(img.Path)
			if err != nil {
				return reloaded, fmt.Errorf("gadget: reload image %s: %w", img.Path, err)
			}
			img.Payload = payload
			reloaded = true
		case err, ok := <-img.Watcher.Errors:
			if !ok {
				return reloaded, nil
			}
			return reloaded, fmt.Errorf("gadget: image watch %s: %w", img.Path, err)
		default:
			return reloaded, nil
		}
	}
}

// Interval is the wall-clock pacing window for one fill.
func (img *ImageEndpoint) Interval() time.Duration {
	if img.FrameRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(img.FrameRate)
}

// ReadyToFill reports whether the pacing window has elapsed since the
// last fill, and if so records now as the new last-fill time.
func (img *ImageEndpoint) ReadyToFill(now time.Time) bool {
	if now.Sub(img.lastFill) < img.Interval() {
		return false
	}
	img.lastFill = now
	return true
}
