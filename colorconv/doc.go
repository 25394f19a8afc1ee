// Package colorconv converts framebuffer pixel data (RGB565, RGB24, RGB32)
// into packed YUYV 4:2:2, the only format the pipeline package ever writes
// into a UVC output buffer for a framebuffer-backed source.
//
// The conversion is grounded on processing_fb_uvc.c's fb_fill_uvc_buffer:
// two adjacent source pixels are combined into one 4-byte YUYV word (Y0 V
// Y1 U), using precomputed per-channel contribution tables instead of
// floating point math per pixel, plus a one-pixel-pair cache that
// short-circuits repeated conversions of flat-colored regions.
package colorconv
