package configfs

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverFrameFormats(t *testing.T) {
	root := t.TempDir()
	frame := filepath.Join(root, "streaming", "uncompressed", "u", "360p")
	writeFile(t, filepath.Join(frame, "wWidth"), "640\n")
	writeFile(t, filepath.Join(frame, "wHeight"), "360\n")
	writeFile(t, filepath.Join(frame, "dwDefaultFrameInterval"), "666666\n")
	writeFile(t, filepath.Join(frame, "dwMinBitRate"), "18432000\n")
	writeFile(t, filepath.Join(frame, "dwMaxBitRate"), "18432000\n")
	writeFile(t, filepath.Join(frame, "dwMaxVideoFrameBufferSize"), "460800\n")
	writeFile(t, filepath.Join(frame, "dwFrameInterval"), "666666\n333333\n")

	formats, err := DiscoverFrameFormats(root)
	require.NoError(t, err)
	require.Len(t, formats, 1)

	f := formats[0]
	require.Equal(t, "YUYV", f.Fourcc)
	require.EqualValues(t, 1, f.FormatIndex)
	require.EqualValues(t, 1, f.FrameIndex)
	require.EqualValues(t, 640, f.Width)
	require.EqualValues(t, 360, f.Height)
	require.Equal(t, []uint32{333333, 666666}, f.Intervals)
	require.EqualValues(t, 666666, f.CurrentInterval)
}

func TestDiscoverFrameFormatsMultipleFormatsAndFrames(t *testing.T) {
	root := t.TempDir()
	writeFrame := func(kind, format, frame string, width, height uint32) {
		dir := filepath.Join(root, "streaming", kind, format, frame)
		writeFile(t, filepath.Join(dir, "wWidth"), strconv.FormatUint(uint64(width), 10))
		writeFile(t, filepath.Join(dir, "wHeight"), strconv.FormatUint(uint64(height), 10))
		writeFile(t, filepath.Join(dir, "dwDefaultFrameInterval"), "333333")
	}
	writeFrame("uncompressed", "u", "360p", 640, 360)
	writeFrame("uncompressed", "u", "720p", 1280, 720)
	writeFrame("mjpeg", "m", "1080p", 1920, 1080)

	formats, err := DiscoverFrameFormats(root)
	require.NoError(t, err)
	require.Len(t, formats, 3)

	require.Equal(t, "YUYV", formats[0].Fourcc)
	require.EqualValues(t, 1, formats[0].FormatIndex)
	require.EqualValues(t, 1, formats[0].FrameIndex)

	require.Equal(t, "YUYV", formats[1].Fourcc)
	require.EqualValues(t, 1, formats[1].FormatIndex)
	require.EqualValues(t, 2, formats[1].FrameIndex)

	require.Equal(t, "MJPG", formats[2].Fourcc)
	require.EqualValues(t, 2, formats[2].FormatIndex)
	require.EqualValues(t, 1, formats[2].FrameIndex)
}

func TestDiscoverFrameFormatsRejectsEmptyTree(t *testing.T) {
	root := t.TempDir()
	_, err := DiscoverFrameFormats(root)
	require.Error(t, err)
}
