package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ipter/container-ocr-service/internal/imaging"
)

// EngineName is reported in processing metadata
const EngineName = "Tesseract"

// TesseractOCR implements Recognizer on top of the gosseract client
type TesseractOCR struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewTesseractOCR creates a new Tesseract OCR instance
func NewTesseractOCR(language string) *TesseractOCR {
	if language == "" {
		language = "eng" // Default to English
	}
	return &TesseractOCR{
		language:      language,
		clientFactory: gosseract.NewClient,
	}
}

// EngineVersion asks libtesseract for its version. Call it once at startup.
func EngineVersion() (version string, err error) {
	defer func() {
		if r := recover(); r != nil {
			version, err = "unknown", fmt.Errorf("tesseract version: %v", r)
		}
	}()
	v := strings.TrimSpace(gosseract.Version())
	if v == "" {
		return "unknown", fmt.Errorf("tesseract reported an empty version")
	}
	return v, nil
}

// Recognize runs one recognition pass. A new client is created per call so
// concurrent requests never share engine state.
func (t *TesseractOCR) Recognize(ctx context.Context, img *imaging.PixelImage, mode Mode) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}

	cfg, ok := mode.Config()
	if !ok {
		return Recognition{}, fmt.Errorf("unknown recognition mode %q", mode)
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return Recognition{}, fmt.Errorf("encode image: %w", err)
	}

	c := t.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(t.language); err != nil {
		return Recognition{}, fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		return Recognition{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := c.SetWhitelist(cfg.Whitelist); err != nil {
			return Recognition{}, fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return Recognition{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Recognition{}, fmt.Errorf("word boxes: %w", err)
	}

	bounds := image.Rect(0, 0, img.Width, img.Height)
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, newToken(b.Word, b.Confidence, b.Box, bounds))
	}

	return Recognition{Text: text, Tokens: tokens}, nil
}

// newToken clips the word rectangle to the recognized image
func newToken(word string, confidence float64, box, bounds image.Rectangle) Token {
	r := box.Canon().Intersect(bounds)
	conf := int(math.Round(confidence))
	if confidence < 0 {
		conf = NoConfidence
	}
	return Token{
		Text:       word,
		Confidence: conf,
		X:          r.Min.X,
		Y:          r.Min.Y,
		Width:      r.Dx(),
		Height:     r.Dy(),
	}
}
