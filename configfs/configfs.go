package configfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kestrelcam/uvc-gadget/uvcproto"
)

// streamingSubdir is the uvc function's two standard format kinds
// (Documentation/ABI/testing/configfs-usb-gadget-uvc): the subdirectory
// name and the fourcc it corresponds to, format-group evaluation order.
var streamingSubdir = []struct {
	dir    string
	fourcc string
}{
	{"uncompressed", "YUYV"},
	{"mjpeg", "MJPG"},
}

// DiscoverFrameFormats walks gadgetFunctionDir (the uvc function's
// instance directory, e.g.
// /sys/kernel/config/usb_gadget/g1/functions/uvc.usb0) and builds the
// daemon's frame-format table: one uvcproto.FrameFormat per
// streaming/<kind>/<format>/<frame> leaf, 1-based FormatIndex assigned in
// streamingSubdir order and FrameIndex assigned in directory-name order
// within each format.
func DiscoverFrameFormats(gadgetFunctionDir string) ([]uvcproto.FrameFormat, error) {
	streamingDir := filepath.Join(gadgetFunctionDir, "streaming")
	var formats []uvcproto.FrameFormat

	formatIndex := uint32(0)
	for _, kind := range streamingSubdir {
		kindDir := filepath.Join(streamingDir, kind.dir)
		formatDirs, err := listDirs(kindDir)
		if err != nil {
			continue // this format kind is simply not configured
		}

		for _, formatName := range formatDirs {
			formatIndex++
			formatDir := filepath.Join(kindDir, formatName)
			frameDirs, err := listDirs(formatDir)
			if err != nil {
				return nil, fmt.Errorf("configfs: list frames in %s: %w", formatDir, err)
			}

			frameIndex := uint32(0)
			for _, frameName := range frameDirs {
				frameIndex++
				ff, err := readFrame(filepath.Join(formatDir, frameName), kind.fourcc, formatIndex, frameIndex)
				if err != nil {
					return nil, fmt.Errorf("configfs: read frame %s/%s: %w", formatName, frameName, err)
				}
				formats = append(formats, ff)
			}
		}
	}

	if len(formats) == 0 {
		return nil, fmt.Errorf("configfs: no frame formats found under %s", streamingDir)
	}
	return formats, nil
}

func readFrame(frameDir, fourcc string, formatIndex, frameIndex uint32) (uvcproto.FrameFormat, error) {
	width, err := readUint(frameDir, "wWidth")
	if err != nil {
		return uvcproto.FrameFormat{}, err
	}
	height, err := readUint(frameDir, "wHeight")
	if err != nil {
		return uvcproto.FrameFormat{}, err
	}
	defaultInterval, err := readUint(frameDir, "dwDefaultFrameInterval")
	if err != nil {
		return uvcproto.FrameFormat{}, err
	}
	maxBufferSize, err := readUint(frameDir, "dwMaxVideoFrameBufferSize")
	if err != nil {
		maxBufferSize = width * height * 2
	}
	minBitRate, _ := readUint(frameDir, "dwMinBitRate")
	maxBitRate, _ := readUint(frameDir, "dwMaxBitRate")

	intervals, err := readIntervals(frameDir)
	if err != nil {
		return uvcproto.FrameFormat{}, err
	}
	if len(intervals) == 0 {
		intervals = []uint32{defaultInterval}
	}

	return uvcproto.FrameFormat{
		Fourcc:          fourcc,
		FormatIndex:     formatIndex,
		FrameIndex:      frameIndex,
		Width:           width,
		Height:          height,
		DefaultInterval: defaultInterval,
		MaxBitRate:      maxBitRate,
		MinBitRate:      minBitRate,
		MaxBufferSize:   maxBufferSize,
		Intervals:       intervals,
		CurrentInterval: defaultInterval,
	}, nil
}

// readIntervals reads dwFrameInterval, which ConfigFS stores as one
// interval (in 100ns units) per line, ascending.
func readIntervals(frameDir string) ([]uint32, error) {
	raw, err := os.ReadFile(filepath.Join(frameDir, "dwFrameInterval"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []uint32
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", line, err)
		}
		out = append(out, uint32(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func readUint(dir, name string) (uint32, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return uint32(v), nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
