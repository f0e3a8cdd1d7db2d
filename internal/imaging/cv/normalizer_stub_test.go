//go:build !gocv
// +build !gocv

package cv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipter/container-ocr-service/internal/imaging"
)

func TestStubReportsUnavailable(t *testing.T) {
	require.False(t, Available)

	_, err := NewNormalizer()
	require.Error(t, err)

	img := imaging.NewGray(4, 4)
	res := (&Normalizer{}).Normalize(img, imaging.DefaultOptions())
	require.True(t, res.Failed())
	require.Same(t, img, res.Value.Image)
	require.Empty(t, res.Value.Steps)
}
