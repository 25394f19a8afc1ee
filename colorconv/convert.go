package colorconv

import "fmt"

// rgb2yvyu computes one packed YUYV word from two full-range (8-bit) RGB
// pixels. Used by the RGB565 (16 bpp) path, where R/G/B have already been
// widened to 0-255 by the bit-shift extraction in fillRGB565.
func rgb2yvyu(r1, g1, b1, r2, g2, b2 byte) [4]byte {
	y0 := clampByte(yRFull[r1] + yGFull[g1] + yBFull[b1])
	y1 := clampByte(yRFull[r2] + yGFull[g2] + yBFull[b2])
	u := clampByte((uRFull[r1]+uGFull[g1]+uBFull[b1]+uRFull[r2]+uGFull[g2]+uBFull[b2])/2 + 128<<16)
	v := clampByte((vRFull[r1]+vGFull[g1]+vBFull[b1]+vRFull[r2]+vGFull[g2]+vBFull[b2])/2 + 128<<16)
	return [4]byte{y0, v, y1, u}
}

// rgb2yvyuOpt is the RGB24/RGB32 counterpart: g and b are pre-halved
// (0-127, representing an even channel value 2*g / 2*b), indexing the
// half-sized tables instead of shifting at lookup time.
func rgb2yvyuOpt(r1, g1, b1, r2, g2, b2 byte) [4]byte {
	y0 := clampByte(yRFull[r1] + yGHalf[g1] + yBHalf[b1])
	y1 := clampByte(yRFull[r2] + yGHalf[g2] + yBHalf[b2])
	u := clampByte((uRFull[r1]+uGHalf[g1]+uBHalf[b1]+uRFull[r2]+uGHalf[g2]+uBHalf[b2])/2 + 128<<16)
	v := clampByte((vRFull[r1]+vGHalf[g1]+vBHalf[b1]+vRFull[r2]+vGHalf[g2]+vBHalf[b2])/2 + 128<<16)
	return [4]byte{y0, v, y1, u}
}

// fillRGB565 extracts two RGB565 (16 bpp, little-endian) source pixels
// starting at src[0:4] and returns each channel widened to 0-255.
func fillRGB565(src []byte) (r1, g1, b1, r2, g2, b2 byte) {
	b1 = (src[0] & 0x1f) << 3
	g1 = (((src[1] & 0x7) << 3) | (src[0]&0xE0)>>5) << 2
	r1 = src[1] & 0xF8
	b2 = (src[2] & 0x1f) << 3
	g2 = (((src[3] & 0x7) << 3) | (src[2]&0xE0)>>5) << 2
	r2 = src[3] & 0xF8
	return
}

// Convert fills dst with the YUYV 4:2:2 conversion of src, one packed word
// per pair of adjacent source pixels. bpp is the framebuffer's bits per
// pixel (16, 24, or 32); width*height must be even. dst must be at least
// width*height*2 bytes.
func Convert(dst, src []byte, bpp, width, height int) error {
	pixels := width * height
	if pixels%2 != 0 {
		return fmt.Errorf("colorconv: odd pixel count %d not supported", pixels)
	}
	srcStride, ok := strideFor(bpp)
	if !ok {
		return fmt.Errorf("colorconv: unsupported bpp %d", bpp)
	}
	need := pixels / 2 * srcStride * 2
	if len(src) < need {
		return fmt.Errorf("colorconv: source too short: have %d, need %d", len(src), need)
	}
	if len(dst) < pixels*2 {
		return fmt.Errorf("colorconv: destination too short: have %d, need %d", len(dst), pixels*2)
	}

	switch bpp {
	case 16:
		convertRGB565(dst, src, pixels)
	case 24:
		convertPacked(dst, src, pixels, 3)
	case 32:
		convertPacked(dst, src, pixels, 4)
	}
	return nil
}

func strideFor(bpp int) (int, bool) {
	switch bpp {
	case 16:
		return 2, true
	case 24:
		return 3, true
	case 32:
		return 4, true
	default:
		return 0, false
	}
}

func convertRGB565(dst, src []byte, pixels int) {
	si, di := 0, 0
	for remaining := pixels; remaining > 0; remaining -= 2 {
		r1, g1, b1, r2, g2, b2 := fillRGB565(src[si : si+4])
		word := rgb2yvyu(r1, g1, b1, r2, g2, b2)
		copy(dst[di:di+4], word[:])
		si += 4
		di += 4
	}
}

// convertPacked handles the RGB24 and RGB32 paths, which share the same
// one-pixel-pair cache: repeated solid-color runs (a common case for
// synthetic/test framebuffers and letterboxed content) skip the table
// lookups entirely and re-emit the previous word.
func convertPacked(dst, src []byte, pixels, groupSize int) {
	si, di := 0, 0
	var lastR1, lastG1, lastB1, lastR2, lastG2, lastB2 byte
	var lastWord [4]byte
	haveLast := false

	for remaining := pixels; remaining > 0; remaining -= 2 {
		r1 := src[si]
		g1 := (src[si+1] & 0xFE) >> 1
		b1 := (src[si+2] & 0xFE) >> 1
		r2 := src[si+groupSize]
		g2 := (src[si+groupSize+1] & 0xFE) >> 1
		b2 := (src[si+groupSize+2] & 0xFE) >> 1

		if haveLast && r1 == lastR1 && g1 == lastG1 && b1 == lastB1 &&
			r2 == lastR2 && g2 == lastG2 && b2 == lastB2 {
			copy(dst[di:di+4], lastWord[:])
		} else {
			word := rgb2yvyuOpt(r1, g1, b1, r2, g2, b2)
			copy(dst[di:di+4], word[:])
			lastR1, lastG1, lastB1 = r1, g1, b1
			lastR2, lastG2, lastB2 = r2, g2, b2
			lastWord = word
			haveLast = true
		}

		si += groupSize * 2
		di += 4
	}
}
