package v4l2

import (
	"fmt"
	"unsafe"
)

// ioctl uses a 32-bit value to encode commands sent to the kernel for device control.
// Requests sent via ioctl uses a 32-bit value with the following layout:
// - lower 16 bits: ioctl command
// - Upper 14 bits: size of the parameter structure
// - MSB 2 bits: are reserved for indicating the ``access mode''.
// https://elixir.bootlin.com/linux/v5.13-rc6/source/include/uapi/asm-generic/ioctl.h
//
// The cgo-based calls elsewhere in this package resolve V4L2 ioctl numbers
// directly from <linux/videodev2.h> constants. The UVC gadget control pipe
// uses one ioctl, UVCIOC_SEND_RESPONSE, that kernel UAPI headers expose only
// through <linux/usb/video.h>, which isn't included by cgo.go. It's encoded
// by hand here using the same bit layout the kernel macros use.

const (
	iocOpWrite = 1

	iocTypeBits   = 8
	iocNumberBits = 8
	iocSizeBits   = 14

	numberPos = 0
	typePos   = numberPos + iocNumberBits
	sizePos   = typePos + iocTypeBits
	opPos     = sizePos + iocSizeBits
)

// iocEncWrite encodes an ioctl command where the program writes a value read
// by the kernel (_IOW in the kernel's ioctl.h macros).
func iocEncWrite(iocType, number, size uintptr) uintptr {
	return (uintptr(iocOpWrite) << opPos) | (iocType << typePos) | (number << numberPos) | (size << sizePos)
}

// uvcRequestDataSize is sizeof(struct uvc_request_data): a 4-byte length
// followed by a 60-byte data buffer (see UvcRequestData in uvc.go).
const uvcRequestDataSize = 4 + 60

// uvciocSendResponse is UVCIOC_SEND_RESPONSE, _IOW('U', 1, struct uvc_request_data).
var uvciocSendResponse = iocEncWrite('U', 1, uvcRequestDataSize)

// SendResponse answers a pending UVC control SETUP/DATA request with the
// response payload assembled by the UVC control protocol engine. It must be
// called once per received Setup/Data event, even with a zero-length
// response, or the control pipe stalls.
func SendResponse(fd uintptr, resp *UvcRequestData) error {
	raw := resp.marshal()
	if err := send(fd, uvciocSendResponse, uintptr(unsafe.Pointer(&raw[0]))); err != nil {
		return fmt.Errorf("uvc send response: %w", err)
	}
	return nil
}
