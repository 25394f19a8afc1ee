package uvcproto

import (
	"encoding/binary"

	"github.com/kestrelcam/uvc-gadget/controlmap"
)

// HandleData implements spec.md §4.1's DATA-phase dispatch: the
// pending-control-cs recorded during the prior SETUP disambiguates
// between a streaming probe/commit write and a plain control write.
func (p *Processor) HandleData(data []byte) (Signals, error) {
	var sig Signals
	var err error

	switch p.state.PendingControlCS {
	case PendingProbe, PendingCommit:
		sig, err = p.handleStreamingData(data)
	case PendingPlainControl:
		sig, err = p.handlePlainControlData(data)
	default:
		err = ErrWrongState
	}

	p.latchErrorCode(err)
	return sig, err
}

// handlePlainControlData stores a SET_CUR value (zero-extended from the
// 1-4 bytes the host sent) into the pending ControlMapping row and
// signals the pipeline to push it to the source (spec.md §4.1).
func (p *Processor) handlePlainControlData(data []byte) (Signals, error) {
	unit := p.state.PendingInterface.unit()
	row, ok := p.table.Find(unit, p.state.PendingControlCode)
	p.state.PendingControlCS = PendingNone
	if !ok {
		return Signals{}, ErrInvalidControl
	}

	var buf [4]byte
	n := copy(buf[:], data)
	if n == 0 {
		return Signals{}, ErrInvalidValue
	}
	value := binary.LittleEndian.Uint32(buf[:])
	row.Length = uint32(n)

	return Signals{
		PendingControlRow:   row,
		PendingControlValue: value,
	}, nil
}

// ApplyPendingControl rescales and writes a signaled plain-control value
// to src via controlmap.Apply (spec.md §4.3), called by the pipeline
// layer once HandleData has produced a Signals with PendingControlRow
// set.
func ApplyPendingControl(src controlmap.Source, sig Signals) (int32, error) {
	if sig.PendingControlRow == nil {
		return 0, nil
	}
	return controlmap.Apply(src, sig.PendingControlRow, sig.PendingControlValue)
}
