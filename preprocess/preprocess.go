// Package preprocess provides the stateless raster transforms the OCR and
// barcode strategies run before recognition: grayscale conversion, local and
// fixed thresholding, contrast equalization, denoising, inversion and blur.
// Every transform returns a new image; inputs are never mutated.
package preprocess

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
)

// Grayscale converts an image to single-channel grayscale. Images that are
// already grayscale pass through unchanged.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	flat := imaging.Grayscale(img)
	b := flat.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := flat.Pix[y*flat.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Threshold binarizes with a fixed cut: pixels below cut become black,
// the rest white.
func Threshold(g *image.Gray, cut uint8) *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		if v < cut {
			out.Pix[i] = 0
		} else {
			out.Pix[i] = 255
		}
	}
	return out
}

// Invert flips dark-on-light to light-on-dark and back.
func Invert(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// AdaptiveThreshold binarizes against the local mean of a blockSize window
// minus the constant c. It handles uneven illumination and text on colored
// backgrounds where a fixed threshold fails. blockSize must be odd; even
// values are bumped by one.
func AdaptiveThreshold(g *image.Gray, blockSize, c int) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	// Summed-area table, one row/column of padding.
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(g.Pix[y*g.Stride+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := blockSize / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			threshold := sum/count - int64(c)
			if int64(g.Pix[y*g.Stride+x]) < threshold {
				out.Pix[y*out.Stride+x] = 0
			} else {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// Denoise applies an edge-preserving 3x3 median filter. Denoising can erase
// fine glyph strokes, so callers treat it as optional and fall back to the
// un-denoised image when it is not wanted.
func Denoise(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	var window [9]byte
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= h || nx < 0 || nx >= w {
						continue
					}
					window[n] = g.Pix[ny*g.Stride+nx]
					n++
				}
			}
			s := window[:n]
			sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
			out.Pix[y*out.Stride+x] = s[n/2]
		}
	}
	return out
}

// CLAHE performs contrast-limited adaptive histogram equalization over a
// tiles x tiles grid with the given clip limit (expressed as a multiple of
// the uniform histogram bin height). Pixel lookups are bilinearly
// interpolated between the four surrounding tile mappings.
func CLAHE(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if tiles < 1 {
		tiles = 1
	}
	if tiles > w {
		tiles = w
	}
	if tiles > h {
		tiles = h
	}

	luts := make([][256]uint8, tiles*tiles)
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(w, x0+tileW), min(h, y0+tileH)
			var hist [256]int
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.Pix[y*g.Stride+x]]++
					count++
				}
			}
			if count == 0 {
				continue
			}
			// Clip and redistribute excess uniformly.
			limit := int(clipLimit * float64(count) / 256.0)
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
			for i := range hist {
				hist[i] += share
			}
			cdf := 0
			for i := range hist {
				cdf += hist[i]
				luts[ty*tiles+tx][i] = uint8(min(255, cdf*255/count))
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := g.Pix[y*g.Stride+x]
			// Tile-center based interpolation coordinates.
			fx := (float64(x) - float64(tileW)/2 + 0.5) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2 + 0.5) / float64(tileH)
			tx0 := clamp(int(fx), 0, tiles-1)
			ty0 := clamp(int(fy), 0, tiles-1)
			tx1 := clamp(tx0+1, 0, tiles-1)
			ty1 := clamp(ty0+1, 0, tiles-1)
			wx := fx - float64(tx0)
			wy := fy - float64(ty0)
			if wx < 0 {
				wx = 0
			}
			if wx > 1 {
				wx = 1
			}
			if wy < 0 {
				wy = 0
			}
			if wy > 1 {
				wy = 1
			}
			top := (1-wx)*float64(luts[ty0*tiles+tx0][v]) + wx*float64(luts[ty0*tiles+tx1][v])
			bot := (1-wx)*float64(luts[ty1*tiles+tx0][v]) + wx*float64(luts[ty1*tiles+tx1][v])
			out.Pix[y*out.Stride+x] = uint8((1-wy)*top + wy*bot)
		}
	}
	return out
}

// GaussianBlur suppresses print-texture noise before thresholding.
func GaussianBlur(img image.Image, sigma float64) image.Image {
	return imaging.Blur(img, sigma)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
