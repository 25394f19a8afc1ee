package uvcproto

import "github.com/kestrelcam/uvc-gadget/v4l2"

// Error is a sentinel request-processing failure, carrying the UVC
// REQUEST_ERROR_CODE_CONTROL value the kernel should report back to the
// host on the next GET_CUR of entity 0 (spec.md §4.1/§4.2).
type Error struct {
	msg  string
	code uint8
}

func (e *Error) Error() string { return e.msg }

// Code returns the REQEC_* value to latch into the processor's request
// error state.
func (e *Error) Code() uint8 { return e.code }

var (
	ErrNotReady       = &Error{"control not ready", v4l2.RequestErrorCodeNotReady}
	ErrWrongState     = &Error{"wrong state for request", v4l2.RequestErrorCodeWrongState}
	ErrPower          = &Error{"insufficient power", v4l2.RequestErrorCodePower}
	ErrOutOfRange     = &Error{"value out of range", v4l2.RequestErrorCodeOutOfRange}
	ErrInvalidUnit    = &Error{"invalid unit", v4l2.RequestErrorCodeInvalidUnit}
	ErrInvalidControl = &Error{"invalid control", v4l2.RequestErrorCodeInvalidCtrl}
	ErrInvalidRequest = &Error{"invalid request", v4l2.RequestErrorCodeInvalidReq}
	ErrInvalidValue   = &Error{"invalid value", v4l2.RequestErrorCodeInvalidValue}
)

// codeOf extracts the REQEC_* value from err, defaulting to
// REQEC_INVALID_REQUEST for any other error (or REQEC_NO_ERROR for nil).
func codeOf(err error) uint8 {
	if err == nil {
		return v4l2.RequestErrorCodeNoError
	}
	if ue, ok := err.(*Error); ok {
		return ue.Code()
	}
	return v4l2.RequestErrorCodeInvalidReq
}
