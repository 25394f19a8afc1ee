package controlmap

import "github.com/kestrelcam/uvc-gadget/v4l2"

// Unit identifies which UVC entity a control row belongs to.
type Unit uint8

const (
	InputTerminal Unit = iota
	ProcessingUnit
)

func (u Unit) String() string {
	switch u {
	case InputTerminal:
		return "InputTerminal"
	case ProcessingUnit:
		return "ProcessingUnit"
	default:
		return "Unknown"
	}
}

// Row is one entry of the ControlMapping table (spec.md §3): a static
// (unit, UVC control code) <-> capture-control-id pair, plus the
// runtime-populated range/value state discovered from the capture device.
//
// Host-visible values (Current, Min, Max, Default, Step) are always
// zero-based unsigned, per the invariant host-value = capture-value -
// capture-min; CaptureMin/CaptureMax retain the capture device's native
// (possibly signed, possibly non-zero-based) range for the inverse
// mapping.
type Row struct {
	Unit       Unit
	UVCControl uint8
	CaptureID  v4l2.CtrlID

	Enabled  bool
	DataType v4l2.CtrlType

	Current uint32
	Length  uint32
	Min     uint32
	Max     uint32
	Step    uint32
	Default uint32

	CaptureMin int32
	CaptureMax int32
}

// Table is the full set of control mapping rows for one capture source.
type Table []Row

// Find returns the row matching (unit, uvcControl), and whether it exists
// and is enabled. Disabled or unknown rows are reported as not-found so
// callers uniformly raise INVALID_CONTROL (spec.md §4.1 error reporting).
func (t Table) Find(unit Unit, uvcControl uint8) (*Row, bool) {
	for i := range t {
		if t[i].Unit == unit && t[i].UVCControl == uvcControl {
			if !t[i].Enabled {
				return nil, false
			}
			return &t[i], true
		}
	}
	return nil, false
}
