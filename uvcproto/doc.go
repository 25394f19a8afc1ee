// Package uvcproto implements the UVC control protocol engine: decoding
// class SETUP requests on the control and streaming interfaces (spec.md
// §4.1), plain control GET/SET handling (§4.2), the probe/commit streaming
// negotiator (§4.4), and the StreamingControl/UvcRequestState data model
// (§3).
//
// A Processor owns one output endpoint's pending cross-phase request
// state, its probe/commit StreamingControl instances, and the
// controlmap.Table it dispatches plain control requests against. It
// produces response bytes for the kernel's "send response" ioctl and
// raises Signals for the pipeline/lifecycle packages to act on (apply a
// frame format, push a control value, start/stop streaming).
package uvcproto
