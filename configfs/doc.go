// Package configfs discovers the frame-format table a UVC gadget function
// was configured with (spec.md §6 "Frame-format table (collaborator)")
// by reading the attribute files ConfigFS exposes under a gadget's
// usb_gadget/<gadget>/functions/uvc.<instance>/streaming tree, instead of
// requiring the daemon to hardcode its own format list. Discovery is
// strictly read-only: the USB gadget must already have been assembled
// (g_webcam-style) by the system's own gadget setup before the daemon
// starts.
package configfs
