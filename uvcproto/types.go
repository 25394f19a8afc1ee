package uvcproto

import "github.com/kestrelcam/uvc-gadget/controlmap"

// FrameFormat is one entry of the externally-supplied frame-format table
// (spec.md §3/§6). Indices are 1-based on the wire; the set is read-only
// during operation.
type FrameFormat struct {
	USBSpeed          uint32
	Fourcc            string
	FormatIndex       uint32 // 1-based
	FrameIndex        uint32 // 1-based
	Width             uint32
	Height            uint32
	DefaultInterval   uint32 // 100ns units
	MaxBitRate        uint32
	MinBitRate        uint32
	MaxBufferSize     uint32
	Capabilities      uint32
	Intervals         []uint32 // 100ns units, ascending
	CurrentInterval   uint32
}

// FrameSize returns the byte size of one video frame at this format/frame.
func (f FrameFormat) FrameSize() uint32 {
	switch f.Fourcc {
	case FourccYUYV:
		return f.Width * f.Height * 2
	case FourccMJPG:
		return f.MaxBufferSize
	default:
		return f.MaxBufferSize
	}
}

// StreamingControl is the 34-byte probe/commit payload exchanged with the
// host during negotiation (spec.md §3).
type StreamingControl struct {
	Hint                     uint16
	FormatIndex              uint8
	FrameIndex               uint8
	FrameInterval            uint32
	KeyFrameRate             uint16
	PFrameRate               uint16
	CompQuality              uint16
	CompWindowSize           uint16
	Delay                    uint16
	MaxVideoFrameSize        uint32
	MaxPayloadTransferSize   uint32
	ClockFrequency           uint32
	FramingInfo              uint8
	PreferredVersion         uint8
	MinVersion               uint8
	MaxVersion               uint8
}

// PendingControlCS identifies what a prior SETUP's SET_CUR is waiting for
// the follow-up DATA phase to supply (spec.md §3 UvcRequestState).
type PendingControlCS uint8

const (
	PendingNone PendingControlCS = iota
	PendingProbe
	PendingCommit
	PendingPlainControl
)

// Interface identifies which UVC interface a pending request targets.
type Interface uint8

const (
	InterfaceNone Interface = iota
	InterfaceControlInputTerminal
	InterfaceControlProcessingUnit
)

func (i Interface) unit() controlmap.Unit {
	if i == InterfaceControlProcessingUnit {
		return controlmap.ProcessingUnit
	}
	return controlmap.InputTerminal
}

// RequestState is the per-output-endpoint cross-phase state of a SET
// request (spec.md §3 UvcRequestState).
type RequestState struct {
	PendingControlCS  PendingControlCS
	PendingInterface  Interface
	PendingControlCode uint8
	ExpectedLength    uint32
	LastErrorCode     uint8
}

// Signals is the scratch structure the processor uses to tell the
// pipeline/lifecycle layers what happened during the most recent
// SETUP/DATA handling (spec.md §3 Events, restricted to the fields this
// package produces).
type Signals struct {
	PendingFrameFormat *FrameFormat
	PendingControlRow  *controlmap.Row
	PendingControlValue uint32
}
