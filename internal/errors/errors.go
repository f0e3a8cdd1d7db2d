package errors

import (
	"fmt"
	"time"
)

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Pipeline stage errors
	ErrorDecodeFailed        ErrorCode = "DECODE_FAILED"
	ErrorNormalizationFailed ErrorCode = "NORMALIZATION_FAILED"
	ErrorOCRFailed           ErrorCode = "OCR_FAILED"
	ErrorUnsupportedFormat   ErrorCode = "UNSUPPORTED_FORMAT"

	// Storage errors
	ErrorStorageFailed ErrorCode = "STORAGE_FAILED"
)

// StageError represents a failure inside one step of the OCR pipeline
type StageError struct {
	Code      ErrorCode
	Stage     string
	Message   string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Result carries the value a stage produced together with the error that
// forced it onto its fallback. Value is always usable: on failure it holds
// the stage's fallback.
type Result[T any] struct {
	Value T
	Err   *StageError
}

// Ok wraps a successful stage value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fallback wraps the fallback value of a failed stage.
func Fallback[T any](v T, err *StageError) Result[T] {
	return Result[T]{Value: v, Err: err}
}

// Failed reports whether the stage fell back.
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// Factory functions for common errors

func NewDecodeFailedError(cause error) *StageError {
	return &StageError{
		Code:      ErrorDecodeFailed,
		Stage:     "decode",
		Message:   "Invalid image data",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewNormalizationFailedError(stage string, cause error) *StageError {
	return &StageError{
		Code:      ErrorNormalizationFailed,
		Stage:     stage,
		Message:   fmt.Sprintf("Image normalization failed at step: %s", stage),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"step": stage,
		},
		Cause: cause,
	}
}

func NewOCRFailedError(mode string, cause error) *StageError {
	return &StageError{
		Code:      ErrorOCRFailed,
		Stage:     "recognize",
		Message:   fmt.Sprintf("OCR failed in mode: %s", mode),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"ocr_mode": mode,
		},
		Cause: cause,
	}
}

func NewUnsupportedFormatError(mimeType string) *StageError {
	return &StageError{
		Code:      ErrorUnsupportedFormat,
		Stage:     "upload",
		Message:   fmt.Sprintf("Unsupported file format: %s", mimeType),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"mime_type": mimeType,
		},
	}
}

func NewStorageFailedError(object string, cause error) *StageError {
	return &StageError{
		Code:      ErrorStorageFailed,
		Stage:     "snapshot",
		Message:   fmt.Sprintf("Failed to store snapshot %s", object),
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// ToMap converts error to map for structured logging
func (e *StageError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"stage":      e.Stage,
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
