package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// PixelImage is an 8-bit grid of samples, either single channel (gray) or
// three interleaved RGB channels, stored row-major without padding.
type PixelImage struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewGray allocates a blank single-channel image
func NewGray(width, height int) *PixelImage {
	return &PixelImage{
		Width:    width,
		Height:   height,
		Channels: 1,
		Pix:      make([]uint8, width*height),
	}
}

// NewRGB allocates a blank three-channel image
func NewRGB(width, height int) *PixelImage {
	return &PixelImage{
		Width:    width,
		Height:   height,
		Channels: 3,
		Pix:      make([]uint8, width*height*3),
	}
}

// FromImage copies a decoded image into a PixelImage. Gray sources stay
// single channel, everything else becomes RGB with alpha dropped.
func FromImage(img image.Image) *PixelImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out := NewGray(w, h)
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
		return out
	case *image.Gray16:
		out := NewGray(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = uint8(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return out
	}

	out := NewRGB(w, h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			i += 3
		}
	}
	return out
}

// Valid reports whether the dimensions and buffer agree
func (p *PixelImage) Valid() bool {
	if p == nil || p.Width <= 0 || p.Height <= 0 {
		return false
	}
	if p.Channels != 1 && p.Channels != 3 {
		return false
	}
	return len(p.Pix) == p.Width*p.Height*p.Channels
}

// Clone returns a deep copy
func (p *PixelImage) Clone() *PixelImage {
	pix := make([]uint8, len(p.Pix))
	copy(pix, p.Pix)
	return &PixelImage{Width: p.Width, Height: p.Height, Channels: p.Channels, Pix: pix}
}

// Bounds returns the pixel rectangle of the image
func (p *PixelImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// At returns the gray sample at (x, y); only valid for single-channel images
func (p *PixelImage) At(x, y int) uint8 {
	return p.Pix[y*p.Width+x]
}

// Image exposes the pixels as a standard library image sharing the buffer
func (p *PixelImage) Image() image.Image {
	if p.Channels == 1 {
		return &image.Gray{Pix: p.Pix, Stride: p.Width, Rect: p.Bounds()}
	}

	out := image.NewNRGBA(p.Bounds())
	for i, j := 0, 0; i < len(p.Pix); i, j = i+3, j+4 {
		out.Pix[j] = p.Pix[i]
		out.Pix[j+1] = p.Pix[i+1]
		out.Pix[j+2] = p.Pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// EncodePNG serializes the image losslessly, as handed to the recognizer
func EncodePNG(p *PixelImage) ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot encode invalid image %dx%dx%d", p.Width, p.Height, p.Channels)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
