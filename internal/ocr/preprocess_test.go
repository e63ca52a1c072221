package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 4))
	dst := upscale(src, upscaleFactor)

	require.Equal(t, 30, dst.Bounds().Dx())
	require.Equal(t, 12, dst.Bounds().Dy())
}

func TestOtsuThreshold_Bimodal(t *testing.T) {
	// Half the pixels at 50, half at 200; the threshold must fall between
	// the two modes.
	var hist [histogramBins]int
	hist[50] = 1000
	hist[200] = 1000

	thr := otsuThreshold(hist, 2000)
	require.GreaterOrEqual(t, thr, uint8(50))
	require.Less(t, thr, uint8(200))
}

func TestBinarizeOtsu_OutputIsBinary(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(40)
			if x > 16 {
				v = 210
			}

			src.SetGray(x, y, color.Gray{Y: v})
		}
	}

	dst := binarizeOtsu(src)

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := dst.GrayAt(x, y).Y
			require.True(t, v == 0 || v == 255, "pixel (%d,%d) = %d", x, y, v)
		}
	}

	require.Equal(t, uint8(0), dst.GrayAt(2, 2).Y)
	require.Equal(t, uint8(255), dst.GrayAt(30, 2).Y)
}

func TestCLAHE_PreservesDimensions(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8((x * 4) % 256)})
		}
	}

	dst := clahe(src, claheTiles, claheClip)
	require.Equal(t, src.Bounds(), dst.Bounds())
}

func TestCLAHE_TinyImagePassthrough(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	dst := clahe(src, claheTiles, claheClip)
	require.Same(t, src, dst)
}

func TestCLAHE_StretchesLowContrast(t *testing.T) {
	// A washed-out gradient confined to [100, 140] should span a wider
	// range after equalization.
	src := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(100 + (x+y)%40)})
		}
	}

	dst := clahe(src, claheTiles, claheClip)

	minV, maxV := uint8(255), uint8(0)

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := dst.GrayAt(x, y).Y
			if v < minV {
				minV = v
			}

			if v > maxV {
				maxV = v
			}
		}
	}

	require.Greater(t, int(maxV)-int(minV), 40)
}
