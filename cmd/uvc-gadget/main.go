// Command uvc-gadget bridges one video source -- a V4L2 capture device, a
// Linux framebuffer, or a static image file -- into a kernel UVC gadget
// function's video-output node, handling the UVC control protocol,
// probe/commit negotiation, buffer lifecycle, and host-driven stream
// on/off (spec.md §1).
package main

import (
	"fmt"
	"os"
	"os/signal"
	sys "syscall"

	"github.com/kestrelcam/uvc-gadget/cmd/uvc-gadget/internal/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := daemon.Options{}

	cmd := &cobra.Command{
		Use:   "uvc-gadget",
		Short: "Bridge a video source into a UVC gadget function's output device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.CapturePath, "capture-device", "", "V4L2 capture device path (mutually exclusive with --framebuffer and --image)")
	flags.StringVar(&opts.FramebufferPath, "framebuffer", "", "Linux framebuffer device path (mutually exclusive with --capture-device and --image)")
	flags.StringVar(&opts.ImagePath, "image", "", "static image file path (mutually exclusive with --capture-device and --framebuffer)")
	flags.StringVar(&opts.UvcDevice, "uvc-device", "/dev/video0", "UVC gadget function video-output device path")
	flags.StringVar(&opts.GadgetFunctionDir, "gadget-function-dir", "", "ConfigFS uvc function directory to discover frame formats from (required)")
	flags.Uint32Var(&opts.BufferCount, "buffers", 4, "buffer ring size (2-32)")
	flags.IntVar(&opts.FramebufferFPS, "framebuffer-fps", 15, "framebuffer/image fill rate in frames per second (1-60)")
	flags.IntVar(&opts.FramebufferWidth, "framebuffer-width", 0, "framebuffer width in pixels (required with --framebuffer)")
	flags.IntVar(&opts.FramebufferHeight, "framebuffer-height", 0, "framebuffer height in pixels (required with --framebuffer)")
	flags.IntVar(&opts.FramebufferBpp, "framebuffer-bpp", 32, "framebuffer bits per pixel (16, 24, or 32)")
	flags.IntVar(&opts.FramebufferLineLength, "framebuffer-line-length", 0, "framebuffer stride in bytes; defaults to width*bpp/8")
	flags.BoolVar(&opts.Debug, "debug", false, "trace every UVC SETUP packet")
	flags.BoolVar(&opts.FPS, "fps", false, "log a frame-rate sample every 2 seconds")
	flags.IntVar(&opts.BlinkOnStartup, "blink-on-startup", 0, "blink the status LED this many times on startup (0 disables, 1-20)")

	return cmd
}

func run(opts daemon.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("uvc-gadget: build logger: %w", err)
	}
	defer log.Sync()
	if opts.Debug {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("uvc-gadget: build debug logger: %w", err)
		}
	}

	d, err := daemon.New(opts, log)
	if err != nil {
		return fmt.Errorf("uvc-gadget: %w", err)
	}
	defer d.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sys.SIGINT, sys.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received termination signal")
		d.Terminate()
	}()

	if err := d.Run(); err != nil {
		return fmt.Errorf("uvc-gadget: %w", err)
	}
	return nil
}
