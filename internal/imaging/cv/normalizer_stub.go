//go:build !gocv
// +build !gocv

package cv

import (
	"errors"

	apperrors "github.com/ipter/container-ocr-service/internal/errors"
	"github.com/ipter/container-ocr-service/internal/imaging"
)

// Available reports whether the OpenCV backend was compiled in
const Available = false

// Normalizer is a placeholder when built without OpenCV.
type Normalizer struct{}

// NewNormalizer returns an error if the gocv build tag is not set.
func NewNormalizer() (*Normalizer, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

func (n *Normalizer) Name() string { return "gocv" }

// Normalize falls back to the unmodified image.
func (n *Normalizer) Normalize(img *imaging.PixelImage, opts imaging.Options) apperrors.Result[imaging.Normalized] {
	_ = opts
	return apperrors.Fallback(imaging.Normalized{Image: img, Steps: []string{}, Scale: 1},
		apperrors.NewNormalizationFailedError("gocv", errors.New("gocv build tag is not enabled")))
}

// NormalizeForContainers falls back to the unmodified image.
func (n *Normalizer) NormalizeForContainers(img *imaging.PixelImage) apperrors.Result[imaging.Normalized] {
	return apperrors.Fallback(imaging.Normalized{Image: img, Steps: []string{}, Scale: 1},
		apperrors.NewNormalizationFailedError("gocv", errors.New("gocv build tag is not enabled")))
}
