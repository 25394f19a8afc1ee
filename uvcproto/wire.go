package uvcproto

// UVC class-request codes (bRequest), USB Video Class spec table 4-2.
const (
	RequestSetCur  = 0x01
	RequestGetCur  = 0x81
	RequestGetMin  = 0x82
	RequestGetMax  = 0x83
	RequestGetRes  = 0x84
	RequestGetLen  = 0x85
	RequestGetInfo = 0x86
	RequestGetDef  = 0x87
)

// VideoStreaming interface control selectors (VS_*), USB Video Class spec
// table 4-5. Only probe/commit are meaningful to this daemon.
const (
	VSProbeControl  = 0x01
	VSCommitControl = 0x02
)

// bmRequestType bit layout (USB ch9.h): recipient occupies bits 0-4, type
// occupies bits 5-6.
const (
	usbTypeMask      = 0x60
	usbTypeClass     = 0x20
	usbRecipientMask = 0x1f
	usbRecipientIntf = 0x01
)

// IsClassInterfaceRequest reports whether bRequestType addresses a
// class-typed, interface-recipient request -- the only kind §4.1's SETUP
// decoding handles; everything else is silently ignored.
func IsClassInterfaceRequest(bRequestType uint8) bool {
	return bRequestType&usbTypeMask == usbTypeClass &&
		bRequestType&usbRecipientMask == usbRecipientIntf
}

// GetInfoCapabilitiesGetSet is the one-byte GET_INFO response body meaning
// "this control supports both GET and SET" (bit 0 = GET, bit 1 = SET).
const GetInfoCapabilitiesGetSet = 0x03

// StreamingControlWireLength is the fixed wire size of a StreamingControl
// struct -- also the GET_LEN response payload.
const StreamingControlWireLength = 34

// Fourcc pixel-format codes this daemon ever negotiates.
const (
	FourccYUYV = "YUYV"
	FourccMJPG = "MJPG"
)
