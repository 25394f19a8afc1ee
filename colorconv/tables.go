package colorconv

// Fixed-point (Q16) ITU-R BT.601 full-range RGB -> YCbCr coefficients.
// Coefficients are split per channel so the three contributions can be
// pre-summed into lookup tables and added at conversion time instead of
// multiplied.
const (
	coeffYR = 19595  // 0.299 * 65536
	coeffYG = 38470  // 0.587 * 65536
	coeffYB = 7471    // 0.114 * 65536
	coeffUR = -11059 // -0.169 * 65536
	coeffUG = -21709 // -0.331 * 65536
	coeffUB = 32768   // 0.500 * 65536
	coeffVR = 32768
	coeffVG = -27439 // -0.419 * 65536
	coeffVB = -5329  // -0.081 * 65536
)

// Full-resolution (8-bit channel) contribution tables, used by the RGB565
// path where R/G/B are already widened to a full 0-255 range.
var (
	yRFull, yGFull, yBFull [256]int32
	uRFull, uGFull, uBFull [256]int32
	vRFull, vGFull, vBFull [256]int32
)

// Half-resolution (7-bit, pre-halved) contribution tables for the G and B
// channels, used by the RGB24/RGB32 optimized path: index i represents
// channel value 2i. Keeping these as a separate, half-sized table (rather
// than shifting the index at lookup time) is what the original C called
// rgb2yvyu_opt versus rgb2yvyu.
var (
	yGHalf, yBHalf [128]int32
	uGHalf, uBHalf [128]int32
	vGHalf, vBHalf [128]int32
)

func init() {
	for i := 0; i < 256; i++ {
		v := int32(i)
		yRFull[i] = coeffYR * v
		yGFull[i] = coeffYG * v
		yBFull[i] = coeffYB * v
		uRFull[i] = coeffUR * v
		uGFull[i] = coeffUG * v
		uBFull[i] = coeffUB * v
		vRFull[i] = coeffVR * v
		vGFull[i] = coeffVG * v
		vBFull[i] = coeffVB * v
	}
	for i := 0; i < 128; i++ {
		yGHalf[i] = yGFull[i*2]
		yBHalf[i] = yBFull[i*2]
		uGHalf[i] = uGFull[i*2]
		uBHalf[i] = uBFull[i*2]
		vGHalf[i] = vGFull[i*2]
		vBHalf[i] = vBFull[i*2]
	}
}

func clampByte(q16 int32) byte {
	v := q16 >> 16
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return byte(v)
	}
}
