package controlmap

import "github.com/kestrelcam/uvc-gadget/v4l2"

// Source is the narrow capture-device surface Discover and Apply need.
// device.Device satisfies this directly.
type Source interface {
	QueryAllControls() ([]v4l2.Control, error)
	GetControl(id v4l2.CtrlID) (v4l2.Control, error)
	SetControlValue(id v4l2.CtrlID, val v4l2.CtrlValue) error
}

// Discover enumerates src's controls and populates every row in table
// whose CaptureID matches an enumerated control, per spec.md §4.3:
//
//	host-min     = 0
//	host-max     = capture-max - capture-min
//	host-default = capture-default - capture-min
//	host-current = capture-current - capture-min
//	host-step    = capture-step
//	enabled      = !(capability-disabled-flag)
//
// Rows with no matching capture control are left Enabled=false, so the
// request processor reports INVALID_CONTROL for them.
func Discover(src Source, table Table) error {
	available, err := src.QueryAllControls()
	if err != nil {
		return err
	}

	byID := make(map[v4l2.CtrlID]v4l2.Control, len(available))
	for _, c := range available {
		byID[c.ID] = c
	}

	for i := range table {
		row := &table[i]
		info, ok := byID[row.CaptureID]
		if !ok {
			row.Enabled = false
			continue
		}

		full, err := src.GetControl(row.CaptureID)
		if err != nil {
			row.Enabled = false
			continue
		}

		row.DataType = info.Type
		row.Enabled = !info.IsDisabled()
		row.CaptureMin = info.Minimum
		row.CaptureMax = info.Maximum
		row.Min = 0
		row.Max = uint32(info.Maximum - info.Minimum)
		row.Step = uint32(info.Step)
		row.Default = uint32(info.Default - info.Minimum)
		row.Current = uint32(full.Value - info.Minimum)
	}

	return nil
}
