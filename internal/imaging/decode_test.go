package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeGrayPNG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 5))
	src.SetGray(3, 2, color.Gray{Y: 200})
	data := encodePNG(t, src)

	img, meta, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 1, img.Channels)
	require.Equal(t, uint8(200), img.At(3, 2))

	require.Equal(t, 10, meta.Width)
	require.Equal(t, 5, meta.Height)
	require.Equal(t, 1, meta.Channels)
	require.Equal(t, "PNG", meta.Format)
	require.Equal(t, "L", meta.ColorSpace)
	require.Equal(t, len(data), meta.FileSize)
}

func TestDecodeRGBAPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, meta, err := Decode(encodePNG(t, src))
	require.NoError(t, err)
	require.Equal(t, 3, img.Channels)
	require.Equal(t, []uint8{10, 20, 30}, img.Pix[(1*4+1)*3:(1*4+1)*3+3])
	require.Equal(t, "RGBA", meta.ColorSpace)
	require.Equal(t, 4, meta.Channels)
}

func TestDecodeJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}))

	img, meta, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 3, img.Channels)
	require.Equal(t, "JPEG", meta.Format)
	require.Equal(t, "RGB", meta.ColorSpace)
	require.Equal(t, 3, meta.Channels)
}

func opaqueRGBA(w, h int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	return src
}

func TestDecodeOpaqueRGBPNG(t *testing.T) {
	src := opaqueRGBA(4, 4)
	src.SetRGBA(2, 1, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	img, meta, err := Decode(encodePNG(t, src))
	require.NoError(t, err)
	require.Equal(t, 3, img.Channels)
	require.Equal(t, "RGB", meta.ColorSpace)
	require.Equal(t, 3, meta.Channels)
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, opaqueRGBA(3, 3)))

	_, meta, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "BMP", meta.Format)
	require.Equal(t, "RGB", meta.ColorSpace)
	require.Equal(t, 3, meta.Channels)
}

// withDimensions rewrites the IHDR width and height of a PNG stream.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecodeRejectsOversizedDimensions(t *testing.T) {
	data := withDimensions(t, encodePNG(t, image.NewGray(image.Rect(0, 0, 2, 2))), 10000, 10000)

	_, _, err := Decode(data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pixel limit")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid image data")

	_, _, err = Decode(nil)
	require.Error(t, err)
}

func TestEncodePNGRoundTrip(t *testing.T) {
	img := filled(7, 3, 1, 99)

	data, err := EncodePNG(img)
	require.NoError(t, err)

	back, _, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, img.Pix, back.Pix)
}
