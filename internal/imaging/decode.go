package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ipter/container-ocr-service/internal/models"
)

// MaxDecodedPixels caps the declared dimensions of an upload. Compressed
// formats can claim far more pixels than their byte size suggests.
const MaxDecodedPixels = 40_000_000

// Decode turns encoded image bytes into pixels plus metadata describing the
// original upload.
func Decode(data []byte) (*PixelImage, *models.ImageMetadata, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("invalid image data: empty payload")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid image data: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodedPixels {
		return nil, nil, fmt.Errorf("invalid image data: %dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, MaxDecodedPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid image data: %w", err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, nil, fmt.Errorf("invalid image data: zero-sized %s image", format)
	}

	colorSpace, channels := describeColor(img)
	meta := &models.ImageMetadata{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Channels:   channels,
		Format:     strings.ToUpper(format),
		FileSize:   len(data),
		ColorSpace: colorSpace,
	}

	return FromImage(img), meta, nil
}

// describeColor names the source color space the way image tooling usually
// reports it (L, P, RGB, RGBA, CMYK) together with its band count.
func describeColor(img image.Image) (string, int) {
	switch v := img.(type) {
	case *image.Gray, *image.Gray16:
		return "L", 1
	case *image.Paletted:
		return "P", 1
	case *image.CMYK:
		return "CMYK", 4
	case *image.RGBA:
		// Decoders hand back RGBA for plain RGB sources too.
		if v.Opaque() {
			return "RGB", 3
		}
		return "RGBA", 4
	case *image.RGBA64:
		if v.Opaque() {
			return "RGB", 3
		}
		return "RGBA", 4
	case *image.NRGBA, *image.NRGBA64:
		return "RGBA", 4
	default:
		return "RGB", 3
	}
}
