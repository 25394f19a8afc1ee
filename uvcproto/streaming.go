package uvcproto

import "github.com/kestrelcam/uvc-gadget/v4l2"

// handleStreaming implements spec.md §4.4's probe/commit negotiator for a
// streaming-interface SETUP packet.
func (p *Processor) handleStreaming(req v4l2.UsbCtrlRequest, cs uint8) ([]byte, Signals, error) {
	if cs != VSProbeControl && cs != VSCommitControl {
		return nil, Signals{}, ErrInvalidControl
	}

	switch req.Request {
	case RequestSetCur:
		if cs == VSProbeControl {
			p.state.PendingControlCS = PendingProbe
		} else {
			p.state.PendingControlCS = PendingCommit
		}
		p.state.ExpectedLength = uint32(req.Length)
		return make([]byte, StreamingControlWireLength), Signals{}, nil

	case RequestGetCur, RequestGetMin:
		// spec.md §4.4 groups GET_CUR and GET_MIN: both copy the stored
		// probe/commit struct into the response, unlike GET_DEF (which
		// rebuilds from format index 0) and GET_MAX (which rebuilds from
		// the last format/frame).
		if cs == VSProbeControl {
			b := p.probe.Marshal()
			return b[:], Signals{}, nil
		}
		b := p.commit.Marshal()
		return b[:], Signals{}, nil

	case RequestGetMax:
		b := p.fillStreamingControl(-1, -1).Marshal()
		return b[:], Signals{}, nil

	case RequestGetDef:
		b := p.fillStreamingControl(0, 0).Marshal()
		return b[:], Signals{}, nil

	case RequestGetRes:
		var zero StreamingControl
		b := zero.Marshal()
		return b[:], Signals{}, nil

	case RequestGetLen:
		return []byte{StreamingControlWireLength, 0x00}, Signals{}, nil

	case RequestGetInfo:
		return []byte{GetInfoCapabilitiesGetSet}, Signals{}, nil

	default:
		return nil, Signals{}, ErrInvalidRequest
	}
}

// handleStreamingData implements the DATA-phase half of §4.4: parse,
// clamp, recompute, store, and on commit latch the active format.
func (p *Processor) handleStreamingData(data []byte) (Signals, error) {
	incoming := Unmarshal(data)

	f, ok := p.clampFormatFrame(int(incoming.FormatIndex), int(incoming.FrameIndex))
	if !ok {
		return Signals{}, ErrInvalidValue
	}

	incoming.FormatIndex = uint8(f.FormatIndex)
	incoming.FrameIndex = uint8(f.FrameIndex)
	incoming.FrameInterval = selectInterval(f, incoming.FrameInterval)
	incoming.MaxVideoFrameSize = maxVideoFrameSize(f.Fourcc, f.Width, f.Height, f.MaxBufferSize)
	if incoming.MaxPayloadTransferSize == 0 {
		incoming.MaxPayloadTransferSize = p.MaxPayloadTransferSize
	}

	sig := Signals{}
	switch p.state.PendingControlCS {
	case PendingProbe:
		p.probe = incoming
	case PendingCommit:
		p.commit = incoming
		sig.PendingFrameFormat = f
	default:
		return Signals{}, ErrWrongState
	}

	p.state.PendingControlCS = PendingNone
	return sig, nil
}
