package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// CLAHE parameters: contrast clip factor and tile grid size.
	claheClipLimit = 2.0
	claheTileGrid  = 8

	// Adaptive threshold parameters: neighborhood size and mean offset.
	thresholdBlockSize = 11
	thresholdOffset    = 2
)

// Enhance converts an image to a black/white form optimized for character
// recognition: grayscale, gaussian denoise, local contrast equalization and
// adaptive binarization. Local operators are used instead of global ones so
// text stays legible under uneven lighting.
func Enhance(img image.Image) *image.Gray {
	gray := toGray(imaging.Blur(imaging.Grayscale(img), 0.8))
	equalized := equalizeLocalContrast(gray, claheClipLimit, claheTileGrid)
	return adaptiveThreshold(equalized, thresholdBlockSize, thresholdOffset)
}

// toGray flattens a decoded image into a single intensity channel.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// equalizeLocalContrast applies contrast-limited adaptive histogram
// equalization. The image is divided into a grid of tiles; each tile gets a
// clipped-histogram lookup table, and pixels are mapped by bilinear
// interpolation between the four surrounding tile tables to avoid visible
// tile seams.
func equalizeLocalContrast(src *image.Gray, clipLimit float64, grid int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return src
	}

	tileW := (w + grid - 1) / grid
	tileH := (h + grid - 1) / grid
	if tileW == 0 {
		tileW = 1
	}
	if tileH == 0 {
		tileH = 1
	}
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	luts := make([][][256]uint8, tilesY)
	for ty := 0; ty < tilesY; ty++ {
		luts[ty] = make([][256]uint8, tilesX)
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)
			luts[ty][tx] = tileLUT(src, bounds, x0, y0, x1, y1, clipLimit)
		}
	}

	dst := image.NewGray(bounds)
	for y := 0; y < h; y++ {
		// Position relative to tile centers, for interpolation weights.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := clampInt(int(fy), 0, tilesY-1)
		ty1 := clampInt(ty0+1, 0, tilesY-1)
		wy := fy - float64(ty0)
		if wy < 0 {
			wy = 0
		} else if wy > 1 {
			wy = 1
		}

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := clampInt(int(fx), 0, tilesX-1)
			tx1 := clampInt(tx0+1, 0, tilesX-1)
			wx := fx - float64(tx0)
			if wx < 0 {
				wx = 0
			} else if wx > 1 {
				wx = 1
			}

			v := src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			top := (1-wx)*float64(luts[ty0][tx0][v]) + wx*float64(luts[ty0][tx1][v])
			bottom := (1-wx)*float64(luts[ty1][tx0][v]) + wx*float64(luts[ty1][tx1][v])
			dst.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: grayValue((1-wy)*top + wy*bottom)})
		}
	}
	return dst
}

// tileLUT builds the clipped-histogram equalization table for one tile.
func tileLUT(src *image.Gray, bounds image.Rectangle, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	pixels := (x1 - x0) * (y1 - y0)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y]++
		}
	}

	// Clip histogram peaks and redistribute the excess uniformly.
	limit := int(clipLimit * float64(pixels) / 256)
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
	share := excess / 256
	remainder := excess % 256
	for i := range hist {
		hist[i] += share
		if i < remainder {
			hist[i]++
		}
	}

	var lut [256]uint8
	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = grayValue(float64(cdf) * 255 / float64(pixels))
	}
	return lut
}

// adaptiveThreshold binarizes using a per-pixel threshold of the local
// neighborhood mean minus a constant offset, computed over a block×block
// window via a summed-area table.
func adaptiveThreshold(src *image.Gray, block, offset int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return src
	}

	// integral[y][x] = sum of pixels in the rectangle [0,0)..(x,y).
	integral := make([][]int64, h+1)
	integral[0] = make([]int64, w+1)
	for y := 0; y < h; y++ {
		integral[y+1] = make([]int64, w+1)
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}

	radius := block / 2
	dst := image.NewGray(bounds)
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-radius), min(h-1, y+radius)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-radius), min(w-1, x+radius)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[y1+1][x1+1] - integral[y0][x1+1] - integral[y1+1][x0] + integral[y0][x0]
			mean := sum / count

			v := int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			out := uint8(0)
			if v > mean-int64(offset) {
				out = 255
			}
			dst.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: out})
		}
	}
	return dst
}

func grayValue(v float64) uint8 {
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
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
