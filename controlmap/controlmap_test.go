package controlmap

import (
	"testing"

	"github.com/kestrelcam/uvc-gadget/v4l2"
	"github.com/stretchr/testify/require"
)

// fakeSource is a minimal in-memory Source used to test Discover and Apply
// without a real V4L2 device.
type fakeSource struct {
	controls map[v4l2.CtrlID]v4l2.Control
	values   map[v4l2.CtrlID]v4l2.CtrlValue
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		controls: make(map[v4l2.CtrlID]v4l2.Control),
		values:   make(map[v4l2.CtrlID]v4l2.CtrlValue),
	}
}

func (f *fakeSource) add(id v4l2.CtrlID, min, max, step, def, value int32) {
	f.controls[id] = v4l2.Control{ID: id, Minimum: min, Maximum: max, Step: step, Default: def}
	f.values[id] = value
}

func (f *fakeSource) QueryAllControls() ([]v4l2.Control, error) {
	var out []v4l2.Control
	for _, c := range f.controls {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeSource) GetControl(id v4l2.CtrlID) (v4l2.Control, error) {
	c := f.controls[id]
	c.Value = f.values[id]
	return c, nil
}

func (f *fakeSource) SetControlValue(id v4l2.CtrlID, val v4l2.CtrlValue) error {
	f.values[id] = val
	return nil
}

// S2 — brightness control write.
func TestApplyBrightnessScenario(t *testing.T) {
	src := newFakeSource()
	src.add(v4l2.CtrlBrightness, -64, 64, 1, 0, 0)

	table := Table{{Unit: ProcessingUnit, UVCControl: PUBrightnessControl, CaptureID: v4l2.CtrlBrightness}}
	require.NoError(t, Discover(src, table))

	row, ok := table.Find(ProcessingUnit, PUBrightnessControl)
	require.True(t, ok)
	require.EqualValues(t, 0, row.Min)
	require.EqualValues(t, 128, row.Max)
	require.EqualValues(t, 64, row.Default)

	captureValue, err := Apply(src, row, 96)
	require.NoError(t, err)
	require.EqualValues(t, 32, captureValue)
	require.EqualValues(t, 32, src.values[v4l2.CtrlBrightness])
}

// S3 — red-balance mirror.
func TestApplyRedBalanceMirrorsBlueBalance(t *testing.T) {
	src := newFakeSource()
	src.add(v4l2.CtrlRedBalance, 0, 200, 1, 100, 100)
	src.add(v4l2.CtrlBlueBalance, 0, 200, 1, 100, 100)

	table := Table{{Unit: ProcessingUnit, UVCControl: PUWhiteBalanceComponentControl, CaptureID: v4l2.CtrlRedBalance}}
	require.NoError(t, Discover(src, table))

	row, ok := table.Find(ProcessingUnit, PUWhiteBalanceComponentControl)
	require.True(t, ok)

	captureValue, err := Apply(src, row, 150)
	require.NoError(t, err)
	require.EqualValues(t, src.values[v4l2.CtrlRedBalance], captureValue)
	require.EqualValues(t, src.values[v4l2.CtrlBlueBalance], captureValue)
}

// Invariant 3 — rescale round-trip: host-range [0, b-a] maps identity.
func TestApplyRescaleRoundTrip(t *testing.T) {
	src := newFakeSource()
	const a, b = int32(-50), int32(50)
	src.add(v4l2.CtrlGain, a, b, 1, 0, 0)

	table := Table{{Unit: ProcessingUnit, UVCControl: PUGainControl, CaptureID: v4l2.CtrlGain}}
	require.NoError(t, Discover(src, table))
	row, _ := table.Find(ProcessingUnit, PUGainControl)

	for v := uint32(0); v <= row.Max; v += 7 {
		captureValue, err := Apply(src, row, v)
		require.NoError(t, err)
		require.Equal(t, int32(v)+a, captureValue)
	}
}

func TestApplyClampsOutOfRangeHostValue(t *testing.T) {
	src := newFakeSource()
	src.add(v4l2.CtrlContrast, 0, 10, 1, 5, 5)
	table := Table{{Unit: ProcessingUnit, UVCControl: PUContrastControl, CaptureID: v4l2.CtrlContrast}}
	require.NoError(t, Discover(src, table))
	row, _ := table.Find(ProcessingUnit, PUContrastControl)

	captureValue, err := Apply(src, row, 9999)
	require.NoError(t, err)
	require.EqualValues(t, 10, captureValue)
}

func TestDisabledControlNotEnabled(t *testing.T) {
	src := newFakeSource()
	table := Table{{Unit: ProcessingUnit, UVCControl: PUGammaControl, CaptureID: v4l2.CtrlGamma}}
	require.NoError(t, Discover(src, table))
	_, ok := table.Find(ProcessingUnit, PUGammaControl)
	require.False(t, ok, "control absent from the capture device must not be enabled")
}
