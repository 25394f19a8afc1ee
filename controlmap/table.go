package controlmap

import "github.com/kestrelcam/uvc-gadget/v4l2"

// DefaultTable returns the static (unit, UVC control code) <-> (capture
// control id) pairing used by this daemon, unpopulated (Enabled=false,
// zero ranges) until Discover runs against an opened capture device.
//
// The set mirrors the rows the original C implementation's control_mapping
// table carries for a typical UVC camera/processing-unit pairing
// (v4l2_endpoint.c's v4l2_get_controls walks this same kind of table by
// capture control id).
func DefaultTable() Table {
	return Table{
		// Camera Terminal (physical-device) controls.
		{Unit: InputTerminal, UVCControl: CTAEModeControl, CaptureID: v4l2.CtrlExposureAuto},
		{Unit: InputTerminal, UVCControl: CTExposureTimeAbsoluteControl, CaptureID: v4l2.CtrlExposureAbsolute},
		{Unit: InputTerminal, UVCControl: CTFocusAbsoluteControl, CaptureID: v4l2.CtrlFocusAbsolute},
		{Unit: InputTerminal, UVCControl: CTFocusAutoControl, CaptureID: v4l2.CtrlFocusAuto},
		{Unit: InputTerminal, UVCControl: CTZoomAbsoluteControl, CaptureID: v4l2.CtrlZoomAbsolute},
		{Unit: InputTerminal, UVCControl: CTPrivacyControl, CaptureID: v4l2.CtrlPrivacy},

		// Processing Unit (image-pipeline) controls.
		{Unit: ProcessingUnit, UVCControl: PUBacklightCompensationControl, CaptureID: v4l2.CtrlBacklightCompensation},
		{Unit: ProcessingUnit, UVCControl: PUBrightnessControl, CaptureID: v4l2.CtrlBrightness},
		{Unit: ProcessingUnit, UVCControl: PUContrastControl, CaptureID: v4l2.CtrlContrast},
		{Unit: ProcessingUnit, UVCControl: PUGainControl, CaptureID: v4l2.CtrlGain},
		{Unit: ProcessingUnit, UVCControl: PUPowerLineFrequencyControl, CaptureID: v4l2.CtrlPowerlineFrequency},
		{Unit: ProcessingUnit, UVCControl: PUHueControl, CaptureID: v4l2.CtrlHue},
		{Unit: ProcessingUnit, UVCControl: PUHueAutoControl, CaptureID: v4l2.CtrlHueAuto},
		{Unit: ProcessingUnit, UVCControl: PUSaturationControl, CaptureID: v4l2.CtrlSaturation},
		{Unit: ProcessingUnit, UVCControl: PUSharpnessControl, CaptureID: v4l2.CtrlSharpness},
		{Unit: ProcessingUnit, UVCControl: PUGammaControl, CaptureID: v4l2.CtrlGamma},
		{Unit: ProcessingUnit, UVCControl: PUWhiteBalanceTemperatureControl, CaptureID: v4l2.CtrlWhiteBalanceTemperature},
		{Unit: ProcessingUnit, UVCControl: PUWhiteBalanceTemperatureAutoControl, CaptureID: v4l2.CtrlAutoWhiteBalance},
		// The UVC white-balance-component control is a single host-visible
		// value that fans out to two capture controls (§4.3); CaptureID
		// names the "primary" side (red) that Discover populates the row
		// from, and Apply additionally writes BlueBalance.
		{Unit: ProcessingUnit, UVCControl: PUWhiteBalanceComponentControl, CaptureID: v4l2.CtrlRedBalance},
	}
}
