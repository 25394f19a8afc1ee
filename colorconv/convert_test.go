package colorconv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertDeterministic(t *testing.T) {
	width, height := 4, 2
	src := make([]byte, width*height*4)
	for i := range src {
		src[i] = byte(i * 7)
	}

	dst1 := make([]byte, width*height*2)
	dst2 := make([]byte, width*height*2)

	require.NoError(t, Convert(dst1, src, 32, width, height))
	require.NoError(t, Convert(dst2, src, 32, width, height))
	require.Equal(t, dst1, dst2, "two independent conversions of the same bytes must be byte-identical")
}

func TestConvertCacheMatchesNonCache(t *testing.T) {
	// A flat-colored framebuffer exercises the one-pair cache on every
	// iteration after the first. The cached words must equal the word the
	// uncached conversion computes for the same pixel pair.
	width, height := 8, 1
	flat := make([]byte, width*height*4)
	for i := 0; i < len(flat); i += 4 {
		flat[i], flat[i+1], flat[i+2], flat[i+3] = 10, 20, 30, 0
	}

	dst := make([]byte, width*height*2)
	require.NoError(t, Convert(dst, flat, 32, width, height))

	// Every 4-byte output word should be identical since every source
	// pixel pair is identical.
	first := dst[0:4]
	// 10,20,30 extracts as R=10 with pre-halved G=10 and B=15.
	want := rgb2yvyuOpt(10, 10, 15, 10, 10, 15)
	require.Equal(t, want[:], first, "first word must match the uncached conversion")
	for i := 4; i < len(dst); i += 4 {
		require.Equal(t, first, dst[i:i+4], "flat input must yield identical output words")
	}
}

func TestConvertRGB565(t *testing.T) {
	// White pixel (all bits set) widens to R=248, G=252, B=248, which
	// converts to Y near 250, chroma near 128.
	src := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	dst := make([]byte, 4)
	require.NoError(t, Convert(dst, src, 16, 2, 1))
	require.InDelta(t, 250, dst[0], 2)
	require.InDelta(t, 250, dst[2], 2)
	require.InDelta(t, 128, dst[1], 2)
	require.InDelta(t, 128, dst[3], 2)
}

func TestConvertRejectsShortBuffers(t *testing.T) {
	require.Error(t, Convert(make([]byte, 1), make([]byte, 1), 32, 2, 2))
	require.Error(t, Convert(make([]byte, 16), make([]byte, 16), 8, 2, 2))
}
