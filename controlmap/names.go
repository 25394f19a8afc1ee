package controlmap

import "github.com/kestrelcam/uvc-gadget/v4l2"

// v4l2ControlNames mirrors v4l2_names.c's v4l2_control_name() switch table,
// restricted to the controls this daemon's mapping table can reference.
// It is read only through V4L2ControlName.
var v4l2ControlNames = map[v4l2.CtrlID]string{
	v4l2.CtrlBrightness:              "V4L2_CID_BRIGHTNESS",
	v4l2.CtrlContrast:                "V4L2_CID_CONTRAST",
	v4l2.CtrlSaturation:              "V4L2_CID_SATURATION",
	v4l2.CtrlHue:                     "V4L2_CID_HUE",
	v4l2.CtrlAutoWhiteBalance:        "V4L2_CID_AUTO_WHITE_BALANCE",
	v4l2.CtrlRedBalance:              "V4L2_CID_RED_BALANCE",
	v4l2.CtrlBlueBalance:             "V4L2_CID_BLUE_BALANCE",
	v4l2.CtrlGamma:                   "V4L2_CID_GAMMA",
	v4l2.CtrlAutogain:                "V4L2_CID_AUTOGAIN",
	v4l2.CtrlGain:                    "V4L2_CID_GAIN",
	v4l2.CtrlPowerlineFrequency:      "V4L2_CID_POWER_LINE_FREQUENCY",
	v4l2.CtrlHueAuto:                 "V4L2_CID_HUE_AUTO",
	v4l2.CtrlWhiteBalanceTemperature: "V4L2_CID_WHITE_BALANCE_TEMPERATURE",
	v4l2.CtrlSharpness:               "V4L2_CID_SHARPNESS",
	v4l2.CtrlBacklightCompensation:   "V4L2_CID_BACKLIGHT_COMPENSATION",
	v4l2.CtrlExposureAuto:            "V4L2_CID_EXPOSURE_AUTO",
	v4l2.CtrlExposureAbsolute:        "V4L2_CID_EXPOSURE_ABSOLUTE",
	v4l2.CtrlExposureAutoPriority:    "V4L2_CID_EXPOSURE_AUTO_PRIORITY",
	v4l2.CtrlFocusAbsolute:           "V4L2_CID_FOCUS_ABSOLUTE",
	v4l2.CtrlFocusAuto:               "V4L2_CID_FOCUS_AUTO",
	v4l2.CtrlZoomAbsolute:            "V4L2_CID_ZOOM_ABSOLUTE",
	v4l2.CtrlPanAbsolute:             "V4L2_CID_PAN_ABSOLUTE",
	v4l2.CtrlTiltAbsolute:            "V4L2_CID_TILT_ABSOLUTE",
	v4l2.CtrlIrisAbsolute:            "V4L2_CID_IRIS_ABSOLUTE",
	v4l2.CtrlPrivacy:                 "V4L2_CID_PRIVACY",
}

// V4L2ControlName returns the symbolic name for a capture control id, or
// "V4L2_CID_UNKNOWN" for anything outside the mapping table.
func V4L2ControlName(id v4l2.CtrlID) string {
	if name, ok := v4l2ControlNames[id]; ok {
		return name
	}
	return "V4L2_CID_UNKNOWN"
}

var uvcControlNames = map[Unit]map[uint8]string{
	InputTerminal: {
		CTAEModeControl:               "CT_AE_MODE_CONTROL",
		CTExposureTimeAbsoluteControl: "CT_EXPOSURE_TIME_ABSOLUTE_CONTROL",
		CTFocusAbsoluteControl:        "CT_FOCUS_ABSOLUTE_CONTROL",
		CTFocusAutoControl:            "CT_FOCUS_AUTO_CONTROL",
		CTZoomAbsoluteControl:         "CT_ZOOM_ABSOLUTE_CONTROL",
		CTPrivacyControl:              "CT_PRIVACY_CONTROL",
	},
	ProcessingUnit: {
		PUBacklightCompensationControl:       "PU_BACKLIGHT_COMPENSATION_CONTROL",
		PUBrightnessControl:                  "PU_BRIGHTNESS_CONTROL",
		PUContrastControl:                    "PU_CONTRAST_CONTROL",
		PUGainControl:                        "PU_GAIN_CONTROL",
		PUPowerLineFrequencyControl:           "PU_POWER_LINE_FREQUENCY_CONTROL",
		PUHueControl:                          "PU_HUE_CONTROL",
		PUHueAutoControl:                      "PU_HUE_AUTO_CONTROL",
		PUSaturationControl:                   "PU_SATURATION_CONTROL",
		PUSharpnessControl:                    "PU_SHARPNESS_CONTROL",
		PUGammaControl:                        "PU_GAMMA_CONTROL",
		PUWhiteBalanceTemperatureControl:      "PU_WHITE_BALANCE_TEMPERATURE_CONTROL",
		PUWhiteBalanceTemperatureAutoControl:  "PU_WHITE_BALANCE_TEMPERATURE_AUTO_CONTROL",
		PUWhiteBalanceComponentControl:        "PU_WHITE_BALANCE_COMPONENT_CONTROL",
	},
}

// UVCControlName returns the symbolic name of a (unit, UVC control code)
// pair, or "UVC_CONTROL_UNKNOWN" for a pair outside the name table.
func UVCControlName(unit Unit, code uint8) string {
	if names, ok := uvcControlNames[unit]; ok {
		if name, ok := names[code]; ok {
			return name
		}
	}
	return "UVC_CONTROL_UNKNOWN"
}
