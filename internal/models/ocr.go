package models

import (
	"encoding/json"
	"time"
)

// Validation states a ContainerNumber can carry
const (
	ValidationPending          = "pending"
	ValidationChecksumVerified = "checksum_verified"
	ValidationChecksumRejected = "checksum_rejected"
)

// BoundingBox represents the location of text in the image
type BoundingBox struct {
	X          int     `json:"x"`          // X coordinate of top-left corner
	Y          int     `json:"y"`          // Y coordinate of top-left corner
	Width      int     `json:"width"`      // Width of bounding box
	Height     int     `json:"height"`     // Height of bounding box
	Confidence float64 `json:"confidence"` // Detection confidence (0-1)
}

// ContainerNumber is a shape-valid container identifier found in the text
type ContainerNumber struct {
	Number           string       `json:"number"`                 // 4 letters + 6-7 digits, no separators
	Confidence       float64      `json:"confidence"`             // Fixed placeholder score
	BoundingBox      *BoundingBox `json:"bounding_box,omitempty"` // Nil when no token matched
	ValidationStatus string       `json:"validation_status"`      // pending, checksum_verified, checksum_rejected
}

// ImageMetadata describes the uploaded image as received
type ImageMetadata struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Channels   int    `json:"channels"`
	Format     string `json:"format"`      // JPEG, PNG, GIF, BMP, TIFF, WEBP
	FileSize   int    `json:"file_size"`   // Bytes
	ColorSpace string `json:"color_space"` // L, P, RGB, RGBA, CMYK
}

// ProcessingMetadata records how a result was produced
type ProcessingMetadata struct {
	ProcessingTime       float64   `json:"processing_time"` // Seconds
	Engine               string    `json:"engine"`
	EngineVersion        string    `json:"engine_version"`
	PreprocessingApplied []string  `json:"preprocessing_applied"`
	ScaleFactor          float64   `json:"scale_factor"` // Resize factor; divide box coordinates by it for the original image
	Timestamp            time.Time `json:"timestamp"`
}

// OCRResult is the complete output of one processing request
type OCRResult struct {
	ProcessingID       string             `json:"processing_id"`
	Filename           string             `json:"filename"`
	ExtractedText      string             `json:"extracted_text"`
	ContainerNumbers   []ContainerNumber  `json:"container_numbers"`
	Confidence         float64            `json:"confidence"` // Overall confidence (0-1)
	BoundingBoxes      []BoundingBox      `json:"bounding_boxes"`
	ImageMetadata      *ImageMetadata     `json:"image_metadata,omitempty"`
	ProcessingMetadata ProcessingMetadata `json:"processing_metadata"`
	Success            bool               `json:"success"`
	ErrorMessage       string             `json:"error_message,omitempty"`
}

// ProcessImageRequest is the optional JSON carried next to an upload
type ProcessImageRequest struct {
	ProjectID               string                `json:"project_id,omitempty"`
	PreprocessingOptions    *PreprocessingOptions `json:"preprocessing_options,omitempty"`
	Mode                    string                `json:"mode,omitempty"`
	ExtractContainerNumbers bool                  `json:"extract_container_numbers"`
	VerifyCheckDigit        bool                  `json:"verify_check_digit"`
}

// UnmarshalJSON decodes a supplied request. Container extraction stays on
// unless the caller switches it off.
func (r *ProcessImageRequest) UnmarshalJSON(data []byte) error {
	type plain ProcessImageRequest
	p := plain{ExtractContainerNumbers: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ProcessImageRequest(p)
	return nil
}

// PreprocessingOptions toggles the optional normalization steps. Every
// step is enabled unless explicitly switched off; unknown keys are ignored.
type PreprocessingOptions struct {
	Denoise         bool `json:"denoise"`
	EnhanceContrast bool `json:"enhance_contrast"`
	Sharpen         bool `json:"sharpen"`
	Threshold       bool `json:"threshold"`
}

// DefaultPreprocessingOptions enables every step
func DefaultPreprocessingOptions() PreprocessingOptions {
	return PreprocessingOptions{
		Denoise:         true,
		EnhanceContrast: true,
		Sharpen:         true,
		Threshold:       true,
	}
}

// UnmarshalJSON decodes on top of the defaults so absent keys stay enabled
func (o *PreprocessingOptions) UnmarshalJSON(data []byte) error {
	type plain PreprocessingOptions
	p := plain(DefaultPreprocessingOptions())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = PreprocessingOptions(p)
	return nil
}

// ProcessImageResponse wraps a result for the options endpoint
type ProcessImageResponse struct {
	Success      bool       `json:"success"`
	Result       *OCRResult `json:"result,omitempty"`
	Error        string     `json:"error,omitempty"`
	ProcessingID string     `json:"processing_id,omitempty"`
}

// CheckDigitRequest asks for the check digit of an identifier
type CheckDigitRequest struct {
	Identifier string `json:"identifier"`
}

// CheckDigitResponse reports the computed check digit and shape status
type CheckDigitResponse struct {
	Identifier string `json:"identifier"`
	CheckDigit int    `json:"check_digit"`
	ValidShape bool   `json:"valid_shape"`
	Status     string `json:"status"`
}

// ErrorResponse is returned for transport-level failures
type ErrorResponse struct {
	Error     string    `json:"error"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
