package pipeline

import (
	"errors"
	"fmt"

	"github.com/kestrelcam/uvc-gadget/controlmap"
	"github.com/kestrelcam/uvc-gadget/uvcproto"
	"github.com/kestrelcam/uvc-gadget/v4l2"
	"go.uber.org/zap"
)

// ControlSource lets a variant expose the underlying capture device's
// controls to ApplyPendingControl, or opt out entirely (framebuffer/image
// variants have no capture controls to rescale into).
type ControlSource interface {
	ControlSource() controlmap.Source
}

// processEvents drains every pending UVC event on the output FD's
// exception set and feeds it through the request processor and
// lifecycle coordinator, per spec.md §4.1/§4.7.
func (l *Loop) processEvents() error {
	for {
		ev, err := v4l2.DequeueEvent(l.Output.FD)
		if err != nil {
			if errIsAgain(err) {
				return nil
			}
			return fmt.Errorf("pipeline: dequeue event: %w", err)
		}

		switch ev.GetType() {
		case v4l2.UVCEventConnect:
			l.log.Debug("uvc connect")
		case v4l2.UVCEventDisconnect:
			if err := l.Coordinator.HandleDisconnect(); err != nil {
				return err
			}
		case v4l2.UVCEventStreamOn:
			if err := l.Coordinator.HandleStreamOn(); err != nil {
				return err
			}
		case v4l2.UVCEventStreamOff:
			if err := l.Coordinator.HandleStreamOff(); err != nil {
				return err
			}
		case v4l2.UVCEventSetup:
			if err := l.handleSetup(ev); err != nil {
				l.log.Warn("uvc setup request failed", zap.Error(err))
			}
		case v4l2.UVCEventData:
			if err := l.handleData(ev); err != nil {
				l.log.Warn("uvc data stage failed", zap.Error(err))
			}
		default:
			l.log.Debug("unhandled v4l2 event", zap.Uint32("type", ev.GetType()))
		}
	}
}

func (l *Loop) handleSetup(ev *v4l2.Event) error {
	req := ev.GetUsbCtrlRequest()
	if l.Debug {
		l.log.Debug("setup",
			zap.Uint8("bRequestType", req.RequestType),
			zap.Uint8("bRequest", req.Request),
			zap.Uint16("wValue", req.Value),
			zap.Uint16("wIndex", req.Index),
			zap.Uint16("wLength", req.Length),
		)
	}

	resp, sig, handled, err := l.Output.Processor.HandleSetup(req)
	if !handled {
		return nil
	}
	if err != nil {
		return l.sendResponse(nil, err)
	}
	if sig.PendingFrameFormat != nil {
		l.log.Info("uvc format committed",
			zap.String("fourcc", sig.PendingFrameFormat.Fourcc),
			zap.Uint32("width", sig.PendingFrameFormat.Width),
			zap.Uint32("height", sig.PendingFrameFormat.Height),
		)
	}
	return l.sendResponse(resp, nil)
}

func (l *Loop) handleData(ev *v4l2.Event) error {
	d := ev.GetUvcRequestData()
	sig, err := l.Output.Processor.HandleData(d.Data[:d.Length])
	if err != nil {
		l.log.Warn("uvc data stage rejected", zap.Error(err))
		return nil
	}
	if cs, ok := l.Variant.(ControlSource); ok && sig.PendingControlRow != nil {
		if src := cs.ControlSource(); src != nil {
			if _, err := uvcproto.ApplyPendingControl(src, sig); err != nil {
				l.log.Warn("apply control failed", zap.Error(err))
			}
		}
	}
	return nil
}

// sendResponse writes resp back to the kernel via UVCIOC_SEND_RESPONSE. On a
// handler error it sends a negative length and no payload, which makes the
// kernel stall the control pipe; the error code stays latched in the
// processor for a later request-error-code query.
func (l *Loop) sendResponse(resp []byte, handlerErr error) error {
	data := v4l2.UvcRequestData{}
	if handlerErr == nil {
		data.Length = int32(len(resp))
		copy(data.Data[:], resp)
	} else {
		data.Length = -1
	}
	if err := v4l2.SendResponse(l.Output.FD, &data); err != nil {
		return fmt.Errorf("pipeline: send response: %w", err)
	}
	return nil
}

// errIsAgain reports whether err is the EAGAIN returned by DQEVENT when
// the event queue is empty -- the normal "nothing left to drain" signal.
func errIsAgain(err error) bool {
	return errors.Is(err, v4l2.ErrorTemporary)
}
