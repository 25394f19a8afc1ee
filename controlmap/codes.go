package controlmap

// UVC Camera Terminal (CT_*) and Processing Unit (PU_*) control selectors,
// as defined by the USB Video Class 1.5 specification, table 4-3/4-4.
// wValue's high byte on a class request carries one of these.
const (
	CTScanningModeControl           = 0x01
	CTAEModeControl                 = 0x02
	CTAEPriorityControl             = 0x03
	CTExposureTimeAbsoluteControl   = 0x04
	CTExposureTimeRelativeControl   = 0x05
	CTFocusAbsoluteControl          = 0x06
	CTFocusRelativeControl          = 0x07
	CTIrisAbsoluteControl           = 0x09
	CTIrisRelativeControl           = 0x0A
	CTZoomAbsoluteControl           = 0x0B
	CTZoomRelativeControl           = 0x0C
	CTPanTiltAbsoluteControl        = 0x0D
	CTPanTiltRelativeControl        = 0x0E
	CTFocusAutoControl              = 0x08
	CTPrivacyControl                = 0x11
)

const (
	PUBacklightCompensationControl        = 0x01
	PUBrightnessControl                   = 0x02
	PUContrastControl                     = 0x03
	PUGainControl                         = 0x04
	PUPowerLineFrequencyControl           = 0x05
	PUHueControl                          = 0x06
	PUSaturationControl                   = 0x07
	PUSharpnessControl                    = 0x08
	PUGammaControl                        = 0x09
	PUWhiteBalanceTemperatureControl      = 0x0A
	PUWhiteBalanceComponentControl        = 0x0C
	PUWhiteBalanceTemperatureAutoControl  = 0x0B
	PUWhiteBalanceComponentAutoControl    = 0x0D
	PUDigitalMultiplierControl            = 0x0E
	PUDigitalMultiplierLimitControl       = 0x0F
	PUHueAutoControl                      = 0x10
	PUContrastAutoControl                 = 0x13
)

// RequestErrorCodeControl addresses entity 0 on the Control interface:
// GET_CUR returns the last class-request error code.
const RequestErrorCodeControl = 0x02
