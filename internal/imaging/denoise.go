package imaging

import "math"

const (
	denoisePatchRadius  = 1
	denoiseSearchRadius = 3
	denoiseStrength     = 3.0
)

// denoiseWeights maps a mean squared patch distance to its weight
var denoiseWeights = func() [128]float32 {
	var w [128]float32
	h2 := denoiseStrength * denoiseStrength
	for d := range w {
		w[d] = float32(math.Exp(-float64(d) / h2))
	}
	return w
}()

// denoise is a non-local means filter. Each pixel becomes the weighted mean
// of the pixels in its search window, weighted by how closely the patch
// around each candidate resembles the patch around the pixel. Patch
// distances are computed per displacement with separable box sums, so the
// cost is linear in pixels times search-window area.
func denoise(src *PixelImage) *PixelImage {
	w, h := src.Width, src.Height
	n := w * h
	patch := 2*denoisePatchRadius + 1
	patchArea := int32(patch * patch)

	sumW := make([]float32, n)
	sumV := make([]float32, n)
	sq := make([]int32, n)
	col := make([]int32, n)

	for dy := -denoiseSearchRadius; dy <= denoiseSearchRadius; dy++ {
		for dx := -denoiseSearchRadius; dx <= denoiseSearchRadius; dx++ {
			for y := 0; y < h; y++ {
				qy := clampIndex(y+dy, h)
				for x := 0; x < w; x++ {
					d := int32(src.Pix[y*w+x]) - int32(src.Pix[qy*w+clampIndex(x+dx, w)])
					sq[y*w+x] = d * d
				}
			}

			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					var acc int32
					for k := -denoisePatchRadius; k <= denoisePatchRadius; k++ {
						acc += sq[clampIndex(y+k, h)*w+x]
					}
					col[y*w+x] = acc
				}
			}

			for y := 0; y < h; y++ {
				qy := clampIndex(y+dy, h)
				for x := 0; x < w; x++ {
					var acc int32
					for k := -denoisePatchRadius; k <= denoisePatchRadius; k++ {
						acc += col[y*w+clampIndex(x+k, w)]
					}
					dist := acc / patchArea
					if dist >= int32(len(denoiseWeights)) {
						continue
					}
					wt := denoiseWeights[dist]
					i := y*w + x
					sumW[i] += wt
					sumV[i] += wt * float32(src.Pix[qy*w+clampIndex(x+dx, w)])
				}
			}
		}
	}

	out := NewGray(w, h)
	for i := range out.Pix {
		// the zero displacement always contributes weight 1
		out.Pix[i] = saturate(float64(sumV[i] / sumW[i]))
	}
	return out
}
