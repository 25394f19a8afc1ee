package uvcproto

import (
	"encoding/binary"

	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/v4l2"
)

const entityRequestErrorCode = 0

// HandleSetup decodes one class-interface SETUP packet and produces the
// response bytes to hand to UVCIOC_SEND_RESPONSE, per spec.md §4.1.
// Non class-interface requests are ignored (nil, nil, false).
func (p *Processor) HandleSetup(req v4l2.UsbCtrlRequest) (resp []byte, sig Signals, handled bool, err error) {
	if !IsClassInterfaceRequest(req.RequestType) {
		return nil, Signals{}, false, nil
	}

	entity := uint8(req.Index >> 8)
	iface := uint8(req.Index & 0xff)
	cs := uint8(req.Value >> 8)

	var out []byte
	switch {
	case iface == v4l2.UVCIntfControl && entity == entityRequestErrorCode:
		out, err = p.handleRequestErrorCode(req.Request, cs)
	case iface == v4l2.UVCIntfControl && entity == 1:
		out, sig, err = p.handlePlainControl(controlmap.InputTerminal, req, cs)
	case iface == v4l2.UVCIntfControl && entity == 2:
		out, sig, err = p.handlePlainControl(controlmap.ProcessingUnit, req, cs)
	case iface == v4l2.UVCIntfStreaming:
		out, sig, err = p.handleStreaming(req, cs)
	default:
		return nil, Signals{}, false, nil
	}

	p.latchErrorCode(err)
	if err != nil {
		return nil, Signals{}, true, err
	}
	return out, sig, true, nil
}

func (p *Processor) handleRequestErrorCode(bRequest, cs uint8) ([]byte, error) {
	if cs != RequestErrorCodeSelector {
		return nil, ErrInvalidControl
	}
	if bRequest != RequestGetCur {
		return nil, ErrInvalidRequest
	}
	return []byte{p.v4l2RequestErrorCode()}, nil
}

// handlePlainControl implements spec.md §4.2's GET_MIN/MAX/CUR/DEF/RES/
// INFO/SET_CUR table for a single ControlMapping row.
func (p *Processor) handlePlainControl(unit controlmap.Unit, req v4l2.UsbCtrlRequest, cs uint8) ([]byte, Signals, error) {
	row, ok := p.table.Find(unit, cs)
	if !ok {
		return nil, Signals{}, ErrInvalidControl
	}

	switch req.Request {
	case RequestGetMin:
		return le32(row.Min), Signals{}, nil
	case RequestGetMax:
		return le32(row.Max), Signals{}, nil
	case RequestGetCur:
		return le32(row.Current), Signals{}, nil
	case RequestGetDef:
		return le32(row.Default), Signals{}, nil
	case RequestGetRes:
		return le32(row.Step), Signals{}, nil
	case RequestGetInfo:
		return []byte{GetInfoCapabilitiesGetSet}, Signals{}, nil
	case RequestSetCur:
		iface := InterfaceControlInputTerminal
		if unit == controlmap.ProcessingUnit {
			iface = InterfaceControlProcessingUnit
		}
		p.state.PendingControlCS = PendingPlainControl
		p.state.PendingInterface = iface
		p.state.PendingControlCode = cs
		p.state.ExpectedLength = uint32(req.Length)
		return make([]byte, req.Length), Signals{}, nil
	default:
		return nil, Signals{}, ErrInvalidRequest
	}
}

// RequestErrorCodeSelector is the only cs value entity 0 understands
// (UVC_VC_REQUEST_ERROR_CODE_CONTROL).
const RequestErrorCodeSelector = 0x02

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
