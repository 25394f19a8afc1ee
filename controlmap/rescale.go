package controlmap

import "github.com/kestrelcam/uvc-gadget/v4l2"

// Apply clamps a host-issued value to the row's host range, rescales it
// into the capture device's native range, and writes it (spec.md §4.3):
//
//	capture-value = (host-value - host-min) * (capture-max - capture-min) / (host-max - host-min) + capture-min
//
// truncated toward zero. If row maps the red-balance control, the same
// capture-value is mirrored to blue-balance (the UVC white-balance
// component control represents one value where the capture side exposes
// two -- spec.md §4.3, scenario S3).
func Apply(src Source, row *Row, hostValue uint32) (int32, error) {
	clamped := hostValue
	if clamped < row.Min {
		clamped = row.Min
	}
	if clamped > row.Max {
		clamped = row.Max
	}

	hostSpan := int64(row.Max - row.Min)
	captureSpan := int64(row.CaptureMax - row.CaptureMin)
	var captureValue int32
	if hostSpan == 0 {
		captureValue = row.CaptureMin
	} else {
		captureValue = int32(int64(clamped-row.Min)*captureSpan/hostSpan) + row.CaptureMin
	}

	row.Current = clamped

	if err := src.SetControlValue(row.CaptureID, captureValue); err != nil {
		return 0, err
	}

	if row.CaptureID == v4l2.CtrlRedBalance {
		if err := src.SetControlValue(v4l2.CtrlBlueBalance, captureValue); err != nil {
			return captureValue, err
		}
	}

	return captureValue, nil
}
