package imaging

import "math"

const (
	claheClipLimit = 2.0
	claheTiles     = 8
)

// clahe performs contrast-limited adaptive histogram equalization over a
// tiles x tiles grid, blending neighbouring tile mappings bilinearly.
func clahe(src *PixelImage, clipLimit float64, tiles int) *PixelImage {
	w, h := src.Width, src.Height
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			luts[ty*tiles+tx] = tileLUT(src, tx*tileW, ty*tileH, tileW, tileH, clipLimit)
		}
	}

	out := NewGray(w, h)
	invW := 1.0 / float64(tileW)
	invH := 1.0 / float64(tileH)
	for y := 0; y < h; y++ {
		tyf := float64(y)*invH - 0.5
		ty1 := int(math.Floor(tyf))
		ty2 := ty1 + 1
		ya := tyf - float64(ty1)
		ty1 = clampIndex(ty1, tiles)
		ty2 = clampIndex(ty2, tiles)

		for x := 0; x < w; x++ {
			txf := float64(x)*invW - 0.5
			tx1 := int(math.Floor(txf))
			tx2 := tx1 + 1
			xa := txf - float64(tx1)
			tx1 = clampIndex(tx1, tiles)
			tx2 = clampIndex(tx2, tiles)

			v := src.Pix[y*w+x]
			top := float64(luts[ty1*tiles+tx1][v])*(1-xa) + float64(luts[ty1*tiles+tx2][v])*xa
			bottom := float64(luts[ty2*tiles+tx1][v])*(1-xa) + float64(luts[ty2*tiles+tx2][v])*xa
			out.Pix[y*w+x] = saturate(top*(1-ya) + bottom*ya)
		}
	}
	return out
}

// tileLUT builds the clipped equalization mapping of one tile. Tiles that
// fall outside a small image map every level to itself.
func tileLUT(src *PixelImage, x0, y0, tileW, tileH int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	x1 := min(x0+tileW, src.Width)
	y1 := min(y0+tileH, src.Height)
	area := (x1 - x0) * (y1 - y0)
	if x1 <= x0 || y1 <= y0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	var hist [256]int
	for y := y0; y < y1; y++ {
		row := src.Pix[y*src.Width+x0 : y*src.Width+x1]
		for _, v := range row {
			hist[v]++
		}
	}

	limit := int(clipLimit * float64(area) / 256)
	if limit < 1 {
		limit = 1
	}
	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := clipped / 256
	residual := clipped - batch*256
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(256/residual, 1)
		for i := 0; i < 256 && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}

	scale := 255.0 / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = saturate(float64(sum) * scale)
	}
	return lut
}
