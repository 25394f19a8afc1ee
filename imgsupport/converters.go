package imgsupport

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Yuyv2Jpeg converts a YUYV (YUV 4:2:2 packed, Y0 U Y1 V per pixel pair)
// frame into a JPEG using Go's built-in YCbCr encoder. Used by
// v4l2-probe's --save-frame diagnostic to dump one captured frame for
// visual inspection.
func Yuyv2Jpeg(width, height int, frame []byte) ([]byte, error) {
	if width%2 != 0 {
		return nil, fmt.Errorf("imgsupport: odd width %d not supported", width)
	}
	need := width * height * 2
	if len(frame) < need {
		return nil, fmt.Errorf("imgsupport: frame too short: have %d, need %d", len(frame), need)
	}

	ycbr := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)

	srcIdx := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 2 {
			y0, u, y1, v := frame[srcIdx], frame[srcIdx+1], frame[srcIdx+2], frame[srcIdx+3]
			srcIdx += 4

			ycbr.Y[ycbr.YOffset(x, y)] = y0
			ycbr.Y[ycbr.YOffset(x+1, y)] = y1
			cOff := ycbr.COffset(x, y)
			ycbr.Cb[cOff] = u
			ycbr.Cr[cOff] = v
		}
	}

	var jpgBuf bytes.Buffer
	if err := jpeg.Encode(&jpgBuf, ycbr, nil); err != nil {
		return nil, err
	}
	return jpgBuf.Bytes(), nil
}
