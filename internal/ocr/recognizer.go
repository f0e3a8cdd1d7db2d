package ocr

import (
	"context"

	"github.com/ipter/container-ocr-service/internal/imaging"
)

// NoConfidence marks a token the engine reported without a detection
const NoConfidence = -1

// Token is one unit of recognized text. The rectangle is in pixel
// coordinates of the image handed to the recognizer.
type Token struct {
	Text       string
	Confidence int // 0-100, or NoConfidence
	X          int
	Y          int
	Width      int
	Height     int
}

// Recognition is the raw engine output for one image
type Recognition struct {
	Text   string
	Tokens []Token
}

// Recognizer turns a normalized image into text and positioned tokens
type Recognizer interface {
	Recognize(ctx context.Context, img *imaging.PixelImage, mode Mode) (Recognition, error)
}

// EngineInfo identifies the recognition engine. It is resolved once at
// startup and never changes afterwards.
type EngineInfo struct {
	Name    string
	Version string
}
