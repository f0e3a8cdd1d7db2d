package imaging

import (
	"fmt"

	"golang.org/x/image/draw"

	apperrors "github.com/ipter/container-ocr-service/internal/errors"
	"github.com/ipter/container-ocr-service/internal/models"
)

// Size bounds for recognition input
const (
	MinSide = 300
	MaxSide = 3000

	// MaxPixels caps the area of a resize target. Extreme aspect ratios
	// would otherwise upscale into billions of pixels.
	MaxPixels = MaxSide * MaxSide
)

const (
	thresholdBlockSize = 11
	thresholdC         = 2
	closeKernelSize    = 1
)

// Step recorded by the container-specific chain
const StepContainerOptimized = "container_optimized"

// Options selects the optional normalization steps
type Options = models.PreprocessingOptions

// DefaultOptions enables every step
func DefaultOptions() Options {
	return models.DefaultPreprocessingOptions()
}

// Normalized is the image handed to the recognizer and how it was produced
type Normalized struct {
	Image *PixelImage
	Steps []string
	Scale float64 // resize factor applied, 1 when the size was kept
}

// Normalizer prepares decoded images for recognition
type Normalizer interface {
	Name() string
	Normalize(img *PixelImage, opts Options) apperrors.Result[Normalized]
	NormalizeForContainers(img *PixelImage) apperrors.Result[Normalized]
}

// Native runs the enhancement chains in pure Go
type Native struct{}

// NewNative creates the pure Go normalizer
func NewNative() *Native {
	return &Native{}
}

func (n *Native) Name() string { return "native" }

func (n *Native) Normalize(img *PixelImage, opts Options) apperrors.Result[Normalized] {
	return Normalize(img, opts)
}

func (n *Native) NormalizeForContainers(img *PixelImage) apperrors.Result[Normalized] {
	return NormalizeForContainers(img)
}

// unchanged is the fallback every failed chain returns
func unchanged(img *PixelImage) Normalized {
	return Normalized{Image: img, Steps: []string{}, Scale: 1}
}

// SizeFactor returns the uniform resize factor for the given dimensions and
// whether it is an upscale. A factor of 1 means no resize.
func SizeFactor(width, height int) (float64, bool) {
	w, h := float64(width), float64(height)
	if width < MinSide || height < MinSide {
		return max(MinSide/w, MinSide/h), true
	}
	if width > MaxSide || height > MaxSide {
		return min(MaxSide/w, MaxSide/h), false
	}
	return 1, false
}

// TargetSize returns the truncated dimensions of a uniform resize, never
// smaller than 1x1.
func TargetSize(width, height int, scale float64) (int, int) {
	w := max(int(float64(width)*scale), 1)
	h := max(int(float64(height)*scale), 1)
	return w, h
}

// CheckPixelBudget rejects resize targets larger than MaxPixels.
func CheckPixelBudget(width, height int, scale float64) error {
	w, h := TargetSize(width, height, scale)
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("resize target %dx%d exceeds the %d pixel budget", w, h, MaxPixels)
	}
	return nil
}

// Normalize runs the configurable enhancement chain: grayscale, size
// normalization, denoise, CLAHE, sharpen, adaptive threshold. Disabled
// steps are skipped, never reordered. On failure the original image comes
// back with no steps and the error set.
func Normalize(img *PixelImage, opts Options) (res apperrors.Result[Normalized]) {
	if !img.Valid() {
		return apperrors.Fallback(unchanged(img),
			apperrors.NewNormalizationFailedError("validate", fmt.Errorf("invalid image buffer")))
	}

	step := "grayscale"
	defer func() {
		if r := recover(); r != nil {
			res = apperrors.Fallback(unchanged(img),
				apperrors.NewNormalizationFailedError(step, fmt.Errorf("%v", r)))
		}
	}()

	steps := []string{}
	processed := img
	if img.Channels > 1 {
		processed = toGray(img)
		steps = append(steps, "grayscale")
	}

	step = "resize"
	scale, up := SizeFactor(processed.Width, processed.Height)
	if err := CheckPixelBudget(processed.Width, processed.Height, scale); err != nil {
		return apperrors.Fallback(unchanged(img), apperrors.NewNormalizationFailedError(step, err))
	}
	if scale != 1 {
		if up {
			processed = resize(processed, scale, draw.CatmullRom)
			steps = append(steps, fmt.Sprintf("upscale_%.2f", scale))
		} else {
			processed = resize(processed, scale, areaKernel)
			steps = append(steps, fmt.Sprintf("downscale_%.2f", scale))
		}
	}

	if opts.Denoise {
		step = "denoise"
		processed = denoise(processed)
		steps = append(steps, "denoise")
	}

	if opts.EnhanceContrast {
		step = "clahe"
		processed = clahe(processed, claheClipLimit, claheTiles)
		steps = append(steps, "clahe")
	}

	if opts.Sharpen {
		step = "sharpen"
		processed = sharpen(processed)
		steps = append(steps, "sharpen")
	}

	if opts.Threshold {
		step = "adaptive_threshold"
		processed = adaptiveThreshold(processed, thresholdBlockSize, thresholdC)
		steps = append(steps, "adaptive_threshold")
	}

	return apperrors.Ok(Normalized{Image: processed, Steps: steps, Scale: scale})
}

// NormalizeForContainers is the fixed chain for stenciled container
// markings: grayscale, global histogram equalization, a 1x1 closing and an
// Otsu threshold. The size is kept.
func NormalizeForContainers(img *PixelImage) (res apperrors.Result[Normalized]) {
	if !img.Valid() {
		return apperrors.Fallback(unchanged(img),
			apperrors.NewNormalizationFailedError("validate", fmt.Errorf("invalid image buffer")))
	}

	step := "grayscale"
	defer func() {
		if r := recover(); r != nil {
			res = apperrors.Fallback(unchanged(img),
				apperrors.NewNormalizationFailedError(step, fmt.Errorf("%v", r)))
		}
	}()

	processed := toGray(img)

	step = "equalize_hist"
	processed = equalizeHist(processed)

	step = "morph_close"
	processed = morphClose(processed, closeKernelSize)

	step = "otsu_threshold"
	processed = otsuThreshold(processed)

	return apperrors.Ok(Normalized{
		Image: processed,
		Steps: []string{StepContainerOptimized},
		Scale: 1,
	})
}
