package imaging

import (
	"math"

	"golang.org/x/image/draw"
)

// areaKernel is a box filter. x/image/draw widens kernel support by the
// downscale factor, so a box of half-width 0.5 averages exactly the source
// area covered by each destination pixel.
var areaKernel = &draw.Kernel{
	Support: 0.5,
	At:      func(t float64) float64 { return 1 },
}

// toGray converts RGB to BT.601 luma
func toGray(src *PixelImage) *PixelImage {
	if src.Channels == 1 {
		return src.Clone()
	}
	out := NewGray(src.Width, src.Height)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+3, j+1 {
		r, g, b := int(src.Pix[i]), int(src.Pix[i+1]), int(src.Pix[i+2])
		out.Pix[j] = uint8((299*r + 587*g + 114*b + 500) / 1000)
	}
	return out
}

// resize scales a gray image uniformly; new dimensions are truncated
func resize(src *PixelImage, scale float64, kernel draw.Interpolator) *PixelImage {
	w, h := TargetSize(src.Width, src.Height, scale)
	out := NewGray(w, h)
	dst := out.Image().(draw.Image)
	kernel.Scale(dst, dst.Bounds(), src.Image(), src.Bounds(), draw.Src, nil)
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// reflect101 mirrors an out-of-range index without repeating the edge
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

var sharpenKernel = [3][3]int{
	{-1, -1, -1},
	{-1, 9, -1},
	{-1, -1, -1},
}

// sharpen applies the 3x3 high-pass kernel
func sharpen(src *PixelImage) *PixelImage {
	w, h := src.Width, src.Height
	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for ky := -1; ky <= 1; ky++ {
				sy := reflect101(y+ky, h)
				for kx := -1; kx <= 1; kx++ {
					sx := reflect101(x+kx, w)
					sum += sharpenKernel[ky+1][kx+1] * int(src.Pix[sy*w+sx])
				}
			}
			if sum < 0 {
				sum = 0
			} else if sum > 255 {
				sum = 255
			}
			out.Pix[y*w+x] = uint8(sum)
		}
	}
	return out
}

// gaussianKernel builds a normalized 1-D kernel; sigma <= 0 derives it from
// the size.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	half := size / 2
	sum := 0.0
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// gaussianBlur is a separable blur with replicated borders
func gaussianBlur(src *PixelImage, size int) *PixelImage {
	w, h := src.Width, src.Height
	k := gaussianKernel(size, 0)
	half := size / 2

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, kv := range k {
				acc += kv * float64(src.Pix[y*w+clampIndex(x+i-half, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, kv := range k {
				acc += kv * tmp[clampIndex(y+i-half, h)*w+x]
			}
			out.Pix[y*w+x] = saturate(acc)
		}
	}
	return out
}

// adaptiveThreshold marks a pixel white when it is brighter than its
// Gaussian-weighted neighborhood mean minus c.
func adaptiveThreshold(src *PixelImage, blockSize, c int) *PixelImage {
	mean := gaussianBlur(src, blockSize)
	out := NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		if int(v)-int(mean.Pix[i]) > -c {
			out.Pix[i] = 255
		}
	}
	return out
}

func histogram(src *PixelImage) [256]int {
	var hist [256]int
	for _, v := range src.Pix {
		hist[v]++
	}
	return hist
}

// equalizeHist spreads the global histogram over the full range
func equalizeHist(src *PixelImage) *PixelImage {
	hist := histogram(src)
	total := len(src.Pix)

	first := 0
	for first < 256 && hist[first] == 0 {
		first++
	}

	out := NewGray(src.Width, src.Height)
	if first == 256 {
		return out
	}
	if hist[first] == total {
		for i := range out.Pix {
			out.Pix[i] = uint8(first)
		}
		return out
	}

	var lut [256]uint8
	scale := 255.0 / float64(total-hist[first])
	sum := 0
	for i := first + 1; i < 256; i++ {
		sum += hist[i]
		lut[i] = saturate(float64(sum) * scale)
	}
	for i, v := range src.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// morph applies a size x size rectangular max (dilate) or min (erode)
func morph(src *PixelImage, size int, dilate bool) *PixelImage {
	w, h := src.Width, src.Height
	out := NewGray(w, h)
	r := size / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := src.Pix[y*w+x]
			for ky := -r; ky <= r; ky++ {
				sy := y + ky
				if sy < 0 || sy >= h {
					continue
				}
				for kx := -r; kx <= r; kx++ {
					sx := x + kx
					if sx < 0 || sx >= w {
						continue
					}
					v := src.Pix[sy*w+sx]
					if (dilate && v > best) || (!dilate && v < best) {
						best = v
					}
				}
			}
			out.Pix[y*w+x] = best
		}
	}
	return out
}

// morphClose is a dilation followed by an erosion
func morphClose(src *PixelImage, size int) *PixelImage {
	return morph(morph(src, size, true), size, false)
}

// otsuLevel picks the threshold maximizing between-class variance
func otsuLevel(src *PixelImage) int {
	hist := histogram(src)
	total := float64(len(src.Pix))

	sumAll := 0.0
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumB, wB float64
	best, level := -1.0, 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return level
}

// otsuThreshold binarizes with an automatically chosen level
func otsuThreshold(src *PixelImage) *PixelImage {
	level := otsuLevel(src)
	out := NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		if int(v) > level {
			out.Pix[i] = 255
		}
	}
	return out
}
