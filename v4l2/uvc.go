package v4l2

// uvc.go extends the V4L2 private-event plumbing in events.go with the
// UVC gadget function driver's event range and control-pipe response ioctl.
//
// The UVC gadget driver (drivers/usb/gadget/function/f_uvc.c /
// uvc_queue.c) reports SETUP-stage USB class/vendor control requests, the
// DATA stage of OUT requests, and the four stream lifecycle transitions
// (host connect/disconnect, STREAMON/STREAMOFF) as ordinary V4L2 events
// whose type starts at V4L2_EVENT_PRIVATE_START. The event payload is a
// `struct uvc_event`, a union of usb_device_speed / usb_ctrlrequest /
// uvc_request_data, laid over the same 64-byte `u` union V4L2 uses for its
// own private event data (see Event.GetRawData in events.go).
//
// https://www.kernel.org/doc/html/latest/driver-api/usb/gadget.html

import "encoding/binary"

// UVC event types, defined relative to EventPrivateStart exactly as the
// kernel UAPI header linux/usb/video.h does.
const (
	UVCEventConnect    EventType = EventPrivateStart + 0
	UVCEventDisconnect EventType = EventPrivateStart + 1
	UVCEventStreamOn   EventType = EventPrivateStart + 2
	UVCEventStreamOff  EventType = EventPrivateStart + 3
	UVCEventSetup      EventType = EventPrivateStart + 4
	UVCEventData       EventType = EventPrivateStart + 5
)

var UVCEventTypeNames = map[EventType]string{
	UVCEventConnect:    "UVC_EVENT_CONNECT",
	UVCEventDisconnect: "UVC_EVENT_DISCONNECT",
	UVCEventStreamOn:   "UVC_EVENT_STREAMON",
	UVCEventStreamOff:  "UVC_EVENT_STREAMOFF",
	UVCEventSetup:      "UVC_EVENT_SETUP",
	UVCEventData:       "UVC_EVENT_DATA",
}

// UVC interface kinds, addressed by the SETUP request's wIndex low byte.
const (
	UVCIntfControl   = 0
	UVCIntfStreaming = 1
)

// UVC request-error-code control values, reported to the host in response to
// a GET_CUR on the RequestErrorCodeControl after a failed request.
const (
	RequestErrorCodeNoError       = 0x00
	RequestErrorCodeNotReady      = 0x01
	RequestErrorCodeWrongState    = 0x02
	RequestErrorCodePower         = 0x03
	RequestErrorCodeOutOfRange    = 0x04
	RequestErrorCodeInvalidUnit   = 0x05
	RequestErrorCodeInvalidCtrl   = 0x06
	RequestErrorCodeInvalidReq    = 0x07
	RequestErrorCodeInvalidValue  = 0x08
)

// UsbCtrlRequest mirrors struct usb_ctrlrequest (linux/usb/ch9.h): the
// 8-byte standard USB SETUP packet delivered with a UVCEventSetup event.
type UsbCtrlRequest struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

// decodeUsbCtrlRequest reads a UsbCtrlRequest from the leading bytes of a
// uvc_event union as captured by Event.GetRawData.
func decodeUsbCtrlRequest(raw []byte) UsbCtrlRequest {
	return UsbCtrlRequest{
		RequestType: raw[0],
		Request:     raw[1],
		Value:       binary.LittleEndian.Uint16(raw[2:4]),
		Index:       binary.LittleEndian.Uint16(raw[4:6]),
		Length:      binary.LittleEndian.Uint16(raw[6:8]),
	}
}

// UvcRequestData mirrors struct uvc_request_data: the control-pipe response
// payload written back to the kernel via UVCIOC_SEND_RESPONSE, and the
// payload delivered with a UVCEventData event (the DATA stage of an OUT
// control request).
type UvcRequestData struct {
	Length int32
	Data   [60]byte
}

// decodeUvcRequestData reads a UvcRequestData from the leading bytes of a
// uvc_event union.
func decodeUvcRequestData(raw []byte) UvcRequestData {
	var d UvcRequestData
	d.Length = int32(binary.LittleEndian.Uint32(raw[0:4]))
	copy(d.Data[:], raw[4:4+len(d.Data)])
	return d
}

// marshal lays UvcRequestData out exactly as struct uvc_request_data so it
// can be handed to the UVCIOC_SEND_RESPONSE ioctl.
func (d *UvcRequestData) marshal() [uvcRequestDataSize]byte {
	var raw [uvcRequestDataSize]byte
	binary.LittleEndian.PutUint32(raw[0:4], uint32(d.Length))
	copy(raw[4:], d.Data[:])
	return raw
}

// GetUsbCtrlRequest decodes the SETUP packet carried by a UVCEventSetup
// event. Only valid when GetType() == UVCEventSetup.
func (e *Event) GetUsbCtrlRequest() UsbCtrlRequest {
	return decodeUsbCtrlRequest(e.GetRawData())
}

// GetUvcRequestData decodes the payload carried by a UVCEventData event.
// Only valid when GetType() == UVCEventData.
func (e *Event) GetUvcRequestData() UvcRequestData {
	return decodeUvcRequestData(e.GetRawData())
}

// NewUVCEventSubscription builds a subscription for one of the UVC private
// event types (UVCEventConnect, UVCEventSetup, ...).
func NewUVCEventSubscription(eventType EventType) *EventSubscription {
	return NewEventSubscription(eventType)
}
