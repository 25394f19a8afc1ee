package uvcproto

import (
	"testing"

	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/v4l2"
	"github.com/stretchr/testify/require"
)

func testFormats() []FrameFormat {
	return []FrameFormat{
		{
			Fourcc: FourccYUYV, FormatIndex: 1, FrameIndex: 1,
			Width: 640, Height: 480, DefaultInterval: 666666,
			Intervals: []uint32{333333, 666666},
		},
		{
			Fourcc: FourccYUYV, FormatIndex: 1, FrameIndex: 2,
			Width: 1280, Height: 720, DefaultInterval: 666666,
			Intervals: []uint32{666666},
		},
	}
}

func setupRequest(bRequest, entity, iface, cs uint8, length uint16) v4l2.UsbCtrlRequest {
	return v4l2.UsbCtrlRequest{
		RequestType: 0x21, // class, interface recipient, host-to-device
		Request:     bRequest,
		Value:       uint16(cs) << 8,
		Index:       uint16(entity)<<8 | uint16(iface),
		Length:      length,
	}
}

// S1 — probe/commit happy path.
func TestProbeCommitHappyPath(t *testing.T) {
	p := NewProcessor(controlmap.Table{}, testFormats(), 1024)

	_, _, handled, err := p.HandleSetup(setupRequest(RequestSetCur, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.True(t, handled)
	require.NoError(t, err)

	var want StreamingControl
	want.Hint = 1
	want.FormatIndex = 1
	want.FrameIndex = 2
	want.FrameInterval = 666666
	want.MaxVideoFrameSize = 1280 * 720 * 2
	wire := want.Marshal()

	sig, err := p.HandleData(wire[:])
	require.NoError(t, err)
	require.Nil(t, sig.PendingFrameFormat, "probe must not latch the active format")
	require.EqualValues(t, 2, p.probe.FrameIndex)

	_, _, handled, err = p.HandleSetup(setupRequest(RequestSetCur, 0, v4l2.UVCIntfStreaming, VSCommitControl, StreamingControlWireLength))
	require.True(t, handled)
	require.NoError(t, err)

	sig, err = p.HandleData(wire[:])
	require.NoError(t, err)
	require.NotNil(t, sig.PendingFrameFormat, "commit must latch the active format")
	require.EqualValues(t, 1280, sig.PendingFrameFormat.Width)
	require.EqualValues(t, 2, p.Commit().FrameIndex)
}

// spec.md §4.4 groups GET_CUR and GET_MIN: both return the stored
// probe/commit struct, not a struct rebuilt from format index 0 (that is
// GET_DEF's behavior).
func TestStreamingGetMinReturnsStoredStructLikeGetCur(t *testing.T) {
	p := NewProcessor(controlmap.Table{}, testFormats(), 1024)

	_, _, _, err := p.HandleSetup(setupRequest(RequestSetCur, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.NoError(t, err)

	var want StreamingControl
	want.FormatIndex = 1
	want.FrameIndex = 2
	want.FrameInterval = 666666
	wire := want.Marshal()
	_, err = p.HandleData(wire[:])
	require.NoError(t, err)

	curResp, _, _, err := p.HandleSetup(setupRequest(RequestGetCur, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.NoError(t, err)

	minResp, _, _, err := p.HandleSetup(setupRequest(RequestGetMin, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.NoError(t, err)

	require.Equal(t, curResp, minResp, "GET_MIN must echo the stored struct like GET_CUR")

	defResp, _, _, err := p.HandleSetup(setupRequest(RequestGetDef, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.NoError(t, err)
	require.NotEqual(t, curResp, defResp, "GET_DEF rebuilds from format index 0, unlike GET_MIN")
}

// Invariant 4 — probe/commit clamping: an out-of-range bFormatIndex or
// bFrameIndex clamps into [1..N] rather than being rejected (spec.md §9:
// "Out-of-range validation on streaming negotiation is by clamping, not
// rejection; this is intentional and visible to the host").
func TestProbeClampsOutOfRangeIndices(t *testing.T) {
	p := NewProcessor(controlmap.Table{}, testFormats(), 0)
	_, _, _, err := p.HandleSetup(setupRequest(RequestSetCur, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.NoError(t, err)

	var oob StreamingControl
	oob.FormatIndex = 9
	oob.FrameIndex = 9
	wire := oob.Marshal()

	_, err = p.HandleData(wire[:])
	require.NoError(t, err)
	require.EqualValues(t, 1, p.probe.FormatIndex, "format index clamps to the last available format")
	require.EqualValues(t, 2, p.probe.FrameIndex, "frame index clamps to the last frame in that format")
	require.EqualValues(t, 1280*720*2, p.probe.MaxVideoFrameSize)
}

// An empty frame-format table has no index to clamp to, so the DATA
// phase still reports INVALID_VALUE.
func TestProbeWithNoFormatsReportsInvalidValue(t *testing.T) {
	p := NewProcessor(controlmap.Table{}, nil, 0)
	_, _, _, err := p.HandleSetup(setupRequest(RequestSetCur, 0, v4l2.UVCIntfStreaming, VSProbeControl, StreamingControlWireLength))
	require.NoError(t, err)

	var sc StreamingControl
	sc.FormatIndex = 1
	sc.FrameIndex = 1
	wire := sc.Marshal()

	_, err = p.HandleData(wire[:])
	require.Error(t, err)
	require.Equal(t, uint8(v4l2.RequestErrorCodeInvalidValue), codeOf(err))
}

// Invariant 5 — interval selection: smallest interval >= requested, with
// fallback to the largest available.
func TestSelectIntervalPicksSmallestAtOrAboveRequested(t *testing.T) {
	f := &testFormats()[0]
	require.EqualValues(t, 333333, selectInterval(f, 100000))
	require.EqualValues(t, 666666, selectInterval(f, 400000))
	require.EqualValues(t, 666666, selectInterval(f, 9999999))
	require.EqualValues(t, 333333, selectInterval(f, 0))
}

// S6 — unknown control: GET_CUR on a control absent from the mapping
// table reports INVALID_CONTROL and the error code latches for the next
// entity-0 query.
func TestUnknownControlReportsInvalidControl(t *testing.T) {
	p := NewProcessor(controlmap.Table{}, testFormats(), 0)

	_, _, handled, err := p.HandleSetup(setupRequest(RequestGetCur, 2, v4l2.UVCIntfControl, 0x99, 2))
	require.True(t, handled)
	require.ErrorIs(t, err, ErrInvalidControl)

	resp, _, handled, err := p.HandleSetup(setupRequest(RequestGetCur, entityRequestErrorCode, v4l2.UVCIntfControl, RequestErrorCodeSelector, 1))
	require.True(t, handled)
	require.NoError(t, err)
	require.Equal(t, []byte{v4l2.RequestErrorCodeInvalidCtrl}, resp)
}

// Invariant 6 — request-error-code: a successful request clears the
// latched error back to NO_ERROR.
func TestSuccessfulRequestClearsErrorCode(t *testing.T) {
	table := controlmap.Table{{
		Unit: controlmap.ProcessingUnit, UVCControl: 0x02, CaptureID: v4l2.CtrlBrightness,
		Enabled: true, Min: 0, Max: 100, Default: 50, Current: 50, Step: 1,
		CaptureMin: -50, CaptureMax: 50,
	}}
	p := NewProcessor(table, testFormats(), 0)

	_, _, _, err := p.HandleSetup(setupRequest(RequestGetCur, 2, v4l2.UVCIntfControl, 0x99, 2))
	require.Error(t, err)

	resp, _, handled, err := p.HandleSetup(setupRequest(RequestGetCur, 2, v4l2.UVCIntfControl, 0x02, 4))
	require.True(t, handled)
	require.NoError(t, err)
	require.Len(t, resp, 4)

	errResp, _, _, err := p.HandleSetup(setupRequest(RequestGetCur, entityRequestErrorCode, v4l2.UVCIntfControl, RequestErrorCodeSelector, 1))
	require.NoError(t, err)
	require.Equal(t, []byte{v4l2.RequestErrorCodeNoError}, errResp)
}

// Plain control SET_CUR round trip: SETUP records pending state, DATA
// produces a signal the pipeline can push through controlmap.Apply.
func TestPlainControlSetCurRoundTrip(t *testing.T) {
	table := controlmap.Table{{
		Unit: controlmap.ProcessingUnit, UVCControl: 0x02, CaptureID: v4l2.CtrlBrightness,
		Enabled: true, Min: 0, Max: 128, Default: 64, Current: 64, Step: 1,
		CaptureMin: -64, CaptureMax: 64,
	}}
	p := NewProcessor(table, testFormats(), 0)

	_, _, handled, err := p.HandleSetup(setupRequest(RequestSetCur, 2, v4l2.UVCIntfControl, 0x02, 4))
	require.True(t, handled)
	require.NoError(t, err)

	sig, err := p.HandleData(le32(96))
	require.NoError(t, err)
	require.NotNil(t, sig.PendingControlRow)
	require.EqualValues(t, 96, sig.PendingControlValue)
}
