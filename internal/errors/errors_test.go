package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStageErrorUnwrap(t *testing.T) {
	cause := stderrors.New("bad header")
	err := NewDecodeFailedError(cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "DECODE_FAILED")
	require.Contains(t, err.Error(), "bad header")
}

func TestResultFallback(t *testing.T) {
	ok := Ok(3)
	require.False(t, ok.Failed())
	require.Equal(t, 3, ok.Value)

	failed := Fallback(1, NewNormalizationFailedError("clahe", nil))
	require.True(t, failed.Failed())
	require.Equal(t, 1, failed.Value)
	require.Equal(t, "clahe", failed.Err.Stage)
}

func TestToMapIncludesDetails(t *testing.T) {
	m := NewOCRFailedError("default", stderrors.New("engine down")).ToMap()

	require.Equal(t, "OCR_FAILED", m["error_code"])
	require.Equal(t, "default", m["ocr_mode"])
	require.Equal(t, "engine down", m["cause"])
}
