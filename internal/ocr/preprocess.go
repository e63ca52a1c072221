package ocr

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Preprocessing constants tuned for low-resolution phone screenshots.
const (
	upscaleFactor = 3
	claheClip     = 3.0
	claheTiles    = 8
	histogramBins = 256
)

// preprocess runs the fixed enhancement pipeline: 3x smooth upscale, local
// contrast enhancement on the luminance plane, then Otsu binarization.
// The order matters for recognition accuracy; see the extractor tests for
// the observable contract.
func preprocess(img image.Image) *image.Gray {
	up := upscale(img, upscaleFactor)
	lum := luminance(up)
	eq := clahe(lum, claheTiles, claheClip)

	return binarizeOtsu(eq)
}

func upscale(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

func luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return dst
}

// clahe applies contrast-limited adaptive histogram equalization over a
// tiles x tiles grid, interpolating between tile mappings so tile borders
// do not produce visible seams that confuse recognition.
func clahe(src *image.Gray, tiles int, clip float64) *image.Gray {
	w := src.Rect.Dx()
	h := src.Rect.Dy()

	if w < tiles || h < tiles {
		return src
	}

	luts := claheTileLUTs(src, tiles, clip)

	tileW := float64(w) / float64(tiles)
	tileH := float64(h) / float64(tiles)
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.GrayAt(x, y).Y

			// Position relative to tile centers.
			fx := (float64(x)+0.5)/tileW - 0.5
			fy := (float64(y)+0.5)/tileH - 0.5

			tx := clampInt(int(fx), 0, tiles-2)
			ty := clampInt(int(fy), 0, tiles-2)

			wx := clampFloat(fx-float64(tx), 0, 1)
			wy := clampFloat(fy-float64(ty), 0, 1)

			v00 := float64(luts[ty][tx][v])
			v10 := float64(luts[ty][tx+1][v])
			v01 := float64(luts[ty+1][tx][v])
			v11 := float64(luts[ty+1][tx+1][v])

			top := v00*(1-wx) + v10*wx
			bottom := v01*(1-wx) + v11*wx

			dst.SetGray(x, y, color.Gray{Y: uint8(top*(1-wy) + bottom*wy + 0.5)})
		}
	}

	return dst
}

// claheTileLUTs builds one clipped-equalization lookup table per tile.
func claheTileLUTs(src *image.Gray, tiles int, clip float64) [][][histogramBins]uint8 {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	tileW := w / tiles
	tileH := h / tiles

	luts := make([][][histogramBins]uint8, tiles)

	for ty := 0; ty < tiles; ty++ {
		luts[ty] = make([][histogramBins]uint8, tiles)

		for tx := 0; tx < tiles; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := x0 + tileW
			y1 := y0 + tileH

			// Last row/column of tiles absorbs the remainder.
			if tx == tiles-1 {
				x1 = w
			}

			if ty == tiles-1 {
				y1 = h
			}

			luts[ty][tx] = tileLUT(src, x0, y0, x1, y1, clip)
		}
	}

	return luts
}

func tileLUT(src *image.Gray, x0, y0, x1, y1 int, clip float64) [histogramBins]uint8 {
	var hist [histogramBins]int

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(x, y).Y]++
		}
	}

	total := (x1 - x0) * (y1 - y0)

	// Clip the histogram and redistribute the excess uniformly.
	limit := int(clip * float64(total) / histogramBins)
	if limit < 1 {
		limit = 1
	}

	excess := 0

	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}

	share := excess / histogramBins
	for i := range hist {
		hist[i] += share
	}

	var lut [histogramBins]uint8

	cum := 0
	for i := range hist {
		cum += hist[i]
		lut[i] = uint8(clampFloat(float64(cum)*255/float64(total), 0, 255))
	}

	return lut
}

// binarizeOtsu thresholds the image at the level maximizing between-class
// variance, yielding the binary mask the recognition backend expects.
func binarizeOtsu(src *image.Gray) *image.Gray {
	var hist [histogramBins]int

	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[src.GrayAt(x, y).Y]++
		}
	}

	total := b.Dx() * b.Dy()
	threshold := otsuThreshold(hist, total)

	dst := image.NewGray(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.GrayAt(x, y).Y > threshold {
				dst.SetGray(x, y, color.Gray{Y: 255})
			} else {
				dst.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}

	return dst
}

func otsuThreshold(hist [histogramBins]int, total int) uint8 {
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var (
		sumB, wB  float64
		best      uint8
		bestSigma float64
	)

	for i := 0; i < histogramBins; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}

		wF := float64(total) - wB
		if wF == 0 {
			break
		}

		sumB += float64(i) * float64(hist[i])

		mB := sumB / wB
		mF := (sum - sumB) / wF
		sigma := wB * wF * (mB - mF) * (mB - mF)

		if sigma > bestSigma {
			bestSigma = sigma
			best = uint8(i)
		}
	}

	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
