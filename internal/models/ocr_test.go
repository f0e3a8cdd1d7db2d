package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessImageRequestDefaults(t *testing.T) {
	var req ProcessImageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"preprocessing_options": {"denoise": false}}`), &req))
	require.True(t, req.ExtractContainerNumbers)
	require.False(t, req.VerifyCheckDigit)
	require.NotNil(t, req.PreprocessingOptions)
	require.False(t, req.PreprocessingOptions.Denoise)
	require.True(t, req.PreprocessingOptions.Sharpen)

	req = ProcessImageRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"extract_container_numbers": false, "mode": "sparse"}`), &req))
	require.False(t, req.ExtractContainerNumbers)
	require.Equal(t, "sparse", req.Mode)
	require.Nil(t, req.PreprocessingOptions)
}

func TestPreprocessingOptionsIgnoreUnknownKeys(t *testing.T) {
	var opts PreprocessingOptions
	require.NoError(t, json.Unmarshal([]byte(`{"threshold": false, "future_flag": true}`), &opts))
	require.Equal(t, PreprocessingOptions{Denoise: true, EnhanceContrast: true, Sharpen: true}, opts)
}
