package uvcproto

import (
	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/v4l2"
)

// StallError wraps a request failure that stalls the control pipe. The
// SETUP/DATA handlers in this package do not return it; they return *Error,
// and the pipeline answers any handler error with a negative-length
// response, which stalls the pipe.
type StallError struct{ cause error }

func (s *StallError) Error() string { return s.cause.Error() }
func (s *StallError) Unwrap() error { return s.cause }

// Processor owns one output endpoint's UVC control-pipe state: the
// ControlMapping table, the probe/commit StreamingControl pair, the
// frame-format table used to fill them, and the cross-phase RequestState
// (spec.md §3/§4.1-§4.4).
type Processor struct {
	table   controlmap.Table
	formats []FrameFormat

	probe  StreamingControl
	commit StreamingControl

	state RequestState

	// MaxPayloadTransferSize feeds dwMaxPayloadTransferSize (spec.md §4.4:
	// "maxpacket * (mult+1) * (burst+1), external negotiator values").
	MaxPayloadTransferSize uint32
}

// NewProcessor builds a Processor over an already-Discover'd ControlMapping
// table and the daemon's frame-format table, with both probe and commit
// seeded from the first format/frame (spec.md §4.4 GET_DEF semantics).
func NewProcessor(table controlmap.Table, formats []FrameFormat, maxPayloadTransferSize uint32) *Processor {
	p := &Processor{
		table:                  table,
		formats:                formats,
		MaxPayloadTransferSize: maxPayloadTransferSize,
	}
	p.probe = p.fillStreamingControl(0, 0)
	p.commit = p.probe
	return p
}

// Commit returns the latched commit StreamingControl -- the format the
// pipeline should be applying once streaming starts.
func (p *Processor) Commit() StreamingControl { return p.commit }

// findFormatFrame resolves a 0-based (format-ordinal, frame-ordinal) pair
// against the flat frame-format table, honoring the negative-index "count
// from the end" convention the original negotiator uses for GET_MAX
// (spec.md §4.4 "largest supported"). The table is a flat list of
// (format, frame) entries, each carrying its own 1-based FormatIndex and
// FrameIndex; a format-ordinal selects the group of entries sharing a
// FormatIndex, in ascending FormatIndex order, and a frame-ordinal
// selects within that group in ascending FrameIndex order.
func (p *Processor) findFormatFrame(formatOrdinal, frameOrdinal int) (*FrameFormat, bool) {
	if len(p.formats) == 0 {
		return nil, false
	}

	groups := formatGroups(p.formats)
	n := len(groups)
	if formatOrdinal < 0 {
		formatOrdinal = n + formatOrdinal
	}
	if formatOrdinal < 0 || formatOrdinal >= n {
		return nil, false
	}

	group := groups[formatOrdinal]
	m := len(group)
	if frameOrdinal < 0 {
		frameOrdinal = m + frameOrdinal
	}
	if frameOrdinal < 0 || frameOrdinal >= m {
		return nil, false
	}
	return group[frameOrdinal], true
}

// clampFormatFrame resolves a 1-based (bFormatIndex, bFrameIndex) pair
// against the frame-format table by clamping out-of-range indices into
// [1..N] rather than rejecting them (spec.md §4.1 "clamp format-index to
// [1..#formats], frame-index to [1..#frames(format)]"; §9 design notes:
// "Out-of-range validation on streaming negotiation is by clamping, not
// rejection; this is intentional and visible to the host"). Returns false
// only when the table itself is empty.
func (p *Processor) clampFormatFrame(formatIndex, frameIndex int) (*FrameFormat, bool) {
	groups := formatGroups(p.formats)
	n := len(groups)
	if n == 0 {
		return nil, false
	}

	fi := formatIndex - 1
	if fi < 0 {
		fi = 0
	}
	if fi >= n {
		fi = n - 1
	}

	group := groups[fi]
	m := len(group)
	fr := frameIndex - 1
	if fr < 0 {
		fr = 0
	}
	if fr >= m {
		fr = m - 1
	}
	return group[fr], true
}

// formatGroups partitions formats into per-FormatIndex groups, each
// sorted by ascending FrameIndex, with groups ordered by ascending
// FormatIndex. Table construction keeps entries already in this order, so
// this is a stable grouping pass, not a sort.
func formatGroups(formats []FrameFormat) [][]*FrameFormat {
	var groups [][]*FrameFormat
	var cur []*FrameFormat
	var curIndex uint32
	for i := range formats {
		f := &formats[i]
		if len(cur) == 0 || f.FormatIndex != curIndex {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = nil
			curIndex = f.FormatIndex
		}
		cur = append(cur, f)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// fillStreamingControl builds a StreamingControl for the given 0-based
// format/frame index pair, per spec.md §4.4: hint=1, 1-based indices on
// the wire, dwFrameInterval = the frame's first listed interval, and
// dwMaxVideoFrameSize recomputed from width/height/fourcc.
func (p *Processor) fillStreamingControl(formatIndex, frameIndex int) StreamingControl {
	var sc StreamingControl
	f, ok := p.findFormatFrame(formatIndex, frameIndex)
	if !ok {
		return sc
	}

	sc.Hint = 1
	sc.FormatIndex = uint8(f.FormatIndex)
	sc.FrameIndex = uint8(f.FrameIndex)
	sc.FrameInterval = selectInterval(f, 0)
	sc.MaxVideoFrameSize = f.FrameSize()
	sc.MaxPayloadTransferSize = p.MaxPayloadTransferSize
	if sc.MaxPayloadTransferSize == 0 {
		sc.MaxPayloadTransferSize = sc.MaxVideoFrameSize
	}
	sc.FramingInfo = 3
	sc.PreferredVersion = 1
	sc.MinVersion = 1
	sc.MaxVersion = 1
	return sc
}

// selectInterval picks the smallest interval >= requested from f's
// ascending Intervals list, falling back to the largest available
// (spec.md §4.1 invariant 5). A requested value of 0 selects the first
// (default) interval.
func selectInterval(f *FrameFormat, requested uint32) uint32 {
	if len(f.Intervals) == 0 {
		return f.DefaultInterval
	}
	if requested == 0 {
		return f.Intervals[0]
	}
	for _, iv := range f.Intervals {
		if iv >= requested {
			return iv
		}
	}
	return f.Intervals[len(f.Intervals)-1]
}

// maxVideoFrameSize recomputes dwMaxVideoFrameSize for a given fourcc and
// dimensions, per spec.md §3: YUYV => w*h*2; MJPEG => the format's
// precomputed max buffer size.
func maxVideoFrameSize(fourcc string, width, height, maxBufferSize uint32) uint32 {
	switch fourcc {
	case FourccYUYV:
		return width * height * 2
	default:
		return maxBufferSize
	}
}

// latchErrorCode records err's REQEC_* code (or NO_ERROR) as the value the
// host will read back from RequestErrorCodeControl.
func (p *Processor) latchErrorCode(err error) {
	p.state.LastErrorCode = codeOf(err)
}

// v4l2RequestErrorCode exposes the last latched error for entity-0
// GET_CUR handling.
func (p *Processor) v4l2RequestErrorCode() uint8 {
	if p.state.LastErrorCode == 0 {
		return v4l2.RequestErrorCodeNoError
	}
	return p.state.LastErrorCode
}
