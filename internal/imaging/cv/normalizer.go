//go:build gocv
// +build gocv

package cv

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	apperrors "github.com/ipter/container-ocr-service/internal/errors"
	"github.com/ipter/container-ocr-service/internal/imaging"
)

// Available reports whether the OpenCV backend was compiled in
const Available = true

// Normalizer runs the enhancement chains on OpenCV.
type Normalizer struct {
	ClipLimit      float64
	TileGrid       int
	BlockSize      int
	ThresholdC     float32
	CloseKernelDim int
}

// NewNormalizer creates the OpenCV-backed normalizer.
func NewNormalizer() (*Normalizer, error) {
	return &Normalizer{
		ClipLimit:      2.0,
		TileGrid:       8,
		BlockSize:      11,
		ThresholdC:     2,
		CloseKernelDim: 1,
	}, nil
}

func (n *Normalizer) Name() string { return "gocv" }

// Normalize mirrors imaging.Normalize step for step.
func (n *Normalizer) Normalize(img *imaging.PixelImage, opts imaging.Options) apperrors.Result[imaging.Normalized] {
	fallback := imaging.Normalized{Image: img, Steps: []string{}, Scale: 1}

	mat, err := toMat(img)
	if err != nil {
		return apperrors.Fallback(fallback, apperrors.NewNormalizationFailedError("validate", err))
	}
	defer mat.Close()

	steps := []string{}
	gray := gocv.NewMat()
	defer func() { gray.Close() }()
	if img.Channels > 1 {
		gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)
		steps = append(steps, "grayscale")
	} else {
		mat.CopyTo(&gray)
	}

	scale, up := imaging.SizeFactor(gray.Cols(), gray.Rows())
	if err := imaging.CheckPixelBudget(gray.Cols(), gray.Rows(), scale); err != nil {
		return apperrors.Fallback(fallback, apperrors.NewNormalizationFailedError("resize", err))
	}
	if scale != 1 {
		size := image.Pt(imaging.TargetSize(gray.Cols(), gray.Rows(), scale))
		resized := gocv.NewMat()
		if up {
			gocv.Resize(gray, &resized, size, 0, 0, gocv.InterpolationCubic)
			steps = append(steps, fmt.Sprintf("upscale_%.2f", scale))
		} else {
			gocv.Resize(gray, &resized, size, 0, 0, gocv.InterpolationArea)
			steps = append(steps, fmt.Sprintf("downscale_%.2f", scale))
		}
		gray.Close()
		gray = resized
	}

	if opts.Denoise {
		out := gocv.NewMat()
		gocv.FastNlMeansDenoising(gray, &out)
		gray.Close()
		gray = out
		steps = append(steps, "denoise")
	}

	if opts.EnhanceContrast {
		clahe := gocv.NewCLAHEWithParams(n.ClipLimit, image.Pt(n.TileGrid, n.TileGrid))
		out := gocv.NewMat()
		clahe.Apply(gray, &out)
		clahe.Close()
		gray.Close()
		gray = out
		steps = append(steps, "clahe")
	}

	if opts.Sharpen {
		kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				kernel.SetFloatAt(y, x, -1)
			}
		}
		kernel.SetFloatAt(1, 1, 9)
		out := gocv.NewMat()
		gocv.Filter2D(gray, &out, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)
		kernel.Close()
		gray.Close()
		gray = out
		steps = append(steps, "sharpen")
	}

	if opts.Threshold {
		out := gocv.NewMat()
		gocv.AdaptiveThreshold(gray, &out, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, n.BlockSize, n.ThresholdC)
		gray.Close()
		gray = out
		steps = append(steps, "adaptive_threshold")
	}

	result, err := fromMat(gray)
	if err != nil {
		return apperrors.Fallback(fallback, apperrors.NewNormalizationFailedError("convert", err))
	}
	return apperrors.Ok(imaging.Normalized{Image: result, Steps: steps, Scale: scale})
}

// NormalizeForContainers mirrors imaging.NormalizeForContainers.
func (n *Normalizer) NormalizeForContainers(img *imaging.PixelImage) apperrors.Result[imaging.Normalized] {
	fallback := imaging.Normalized{Image: img, Steps: []string{}, Scale: 1}

	mat, err := toMat(img)
	if err != nil {
		return apperrors.Fallback(fallback, apperrors.NewNormalizationFailedError("validate", err))
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels > 1 {
		gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)
	} else {
		mat.CopyTo(&gray)
	}

	equalized := gocv.NewMat()
	defer equalized.Close()
	gocv.EqualizeHist(gray, &equalized)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(n.CloseKernelDim, n.CloseKernelDim))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(equalized, &closed, gocv.MorphClose, kernel)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(closed, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	result, err := fromMat(binary)
	if err != nil {
		return apperrors.Fallback(fallback, apperrors.NewNormalizationFailedError("convert", err))
	}
	return apperrors.Ok(imaging.Normalized{
		Image: result,
		Steps: []string{imaging.StepContainerOptimized},
		Scale: 1,
	})
}

// toMat copies a PixelImage into an 8-bit Mat.
func toMat(img *imaging.PixelImage) (gocv.Mat, error) {
	if !img.Valid() {
		return gocv.NewMat(), errors.New("invalid image buffer")
	}
	typ := gocv.MatTypeCV8UC1
	if img.Channels == 3 {
		typ = gocv.MatTypeCV8UC3
	}
	return gocv.NewMatFromBytes(img.Height, img.Width, typ, img.Pix)
}

// fromMat copies a single-channel Mat back into a PixelImage.
func fromMat(mat gocv.Mat) (*imaging.PixelImage, error) {
	if mat.Empty() || mat.Channels() != 1 {
		return nil, errors.New("expected non-empty single channel mat")
	}
	data := mat.ToBytes()
	out := imaging.NewGray(mat.Cols(), mat.Rows())
	if len(data) != len(out.Pix) {
		return nil, fmt.Errorf("unexpected mat size %d", len(data))
	}
	copy(out.Pix, data)
	return out, nil
}
