// Command v4l2-probe is a diagnostic CLI that opens a V4L2 device and
// reports its capabilities, current format, and control-mapping table
// discovery -- useful for checking a capture device before pointing
// uvc-gadget at it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/device"
	"github.com/kestrelcam/uvc-gadget/imgsupport"
	"github.com/kestrelcam/uvc-gadget/v4l2"
	"github.com/spf13/cobra"
)

// fourccString renders a V4L2 four-character-code pixel format as its
// four ASCII bytes, little-endian, the way v4l2-ctl and dmesg print it.
func fourccString(fourcc v4l2.FourCCType) string {
	b := [4]byte{byte(fourcc), byte(fourcc >> 8), byte(fourcc >> 16), byte(fourcc >> 24)}
	return string(b[:])
}

func main() {
	var devPath, saveFramePath string

	cmd := &cobra.Command{
		Use:   "v4l2-probe",
		Short: "Report a V4L2 device's capabilities, format, and controls",
		RunE: func(cmd *cobra.Command, args []string) error {
			return probe(devPath, saveFramePath)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&devPath, "device", "d", "/dev/video0", "device path")
	cmd.Flags().StringVar(&saveFramePath, "save-frame", "", "capture one YUYV frame and save it as a JPEG to this path")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func probe(devPath, saveFramePath string) error {
	dev, err := device.Open(devPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", devPath, err)
	}
	defer dev.Close()

	cap := dev.Capability()
	fmt.Printf("device        : %s\n", devPath)
	fmt.Printf("driver        : %s\n", cap.Driver)
	fmt.Printf("card          : %s\n", cap.Card)
	fmt.Printf("video capture : %t\n", cap.IsVideoCaptureSupported())
	fmt.Printf("video output  : %t\n", cap.IsVideoOutputSupported())
	fmt.Printf("streaming     : %t\n", cap.IsStreamingSupported())

	format, err := dev.GetPixFormat()
	if err != nil {
		return fmt.Errorf("get format: %w", err)
	}
	fmt.Printf("format        : %dx%d fourcc=%s\n", format.Width, format.Height, fourccString(format.PixelFormat))

	table := controlmap.DefaultTable()
	if err := controlmap.Discover(dev, table); err != nil {
		return fmt.Errorf("discover controls: %w", err)
	}
	fmt.Println("controls:")
	for _, row := range table {
		if !row.Enabled {
			continue
		}
		fmt.Printf("  %-28s cur=%-6d min=%-6d max=%-6d def=%-6d step=%d\n",
			controlmap.UVCControlName(row.Unit, row.UVCControl), row.Current, row.Min, row.Max, row.Default, row.Step)
	}

	if saveFramePath != "" {
		if fourccString(format.PixelFormat) != "YUYV" {
			return fmt.Errorf("save-frame: device format is %s, only YUYV is supported", fourccString(format.PixelFormat))
		}
		if err := saveOneFrame(dev, int(format.Width), int(format.Height), saveFramePath); err != nil {
			return fmt.Errorf("save-frame: %w", err)
		}
		fmt.Printf("saved frame   : %s\n", saveFramePath)
	}

	return nil
}

// saveOneFrame starts the device's streaming loop, captures a single frame
// from its output channel, converts it to JPEG and writes it to path.
func saveOneFrame(dev *device.Device, width, height int, path string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := dev.Start(ctx); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer dev.Stop()

	frame := <-dev.GetOutput()

	jpg, err := imgsupport.Yuyv2Jpeg(width, height, frame)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}

	return os.WriteFile(path, jpg, 0o644)
}
