package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipter/container-ocr-service/internal/models"
)

func TestCheckDigit(t *testing.T) {
	tests := []struct {
		prefix string
		want   int
	}{
		{prefix: "CSQU305438", want: 3},
		{prefix: "MSKU907032", want: 3},
		{prefix: "TGHU000000", want: 8},
		{prefix: "ABCD123456", want: 0},
		{prefix: "csqu305438", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := CheckDigit(tt.prefix)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCheckDigitIsDeterministic(t *testing.T) {
	a, err := CheckDigit("EFGH987654")
	require.NoError(t, err)
	b, err := CheckDigit("EFGH987654")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.GreaterOrEqual(t, a, 0)
	require.LessOrEqual(t, a, 9)
}

func TestCheckDigitRejectsBadInput(t *testing.T) {
	_, err := CheckDigit("CSQU30543")
	require.Error(t, err)

	_, err = CheckDigit("CSQU3054383")
	require.Error(t, err)

	_, err = CheckDigit("CSQU-30543")
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	require.Equal(t, models.ValidationChecksumVerified, Verify("CSQU3054383"))
	require.Equal(t, models.ValidationChecksumVerified, Verify("MSKU 907032 3"))
	require.Equal(t, models.ValidationChecksumRejected, Verify("CSQU3054389"))
	require.Equal(t, models.ValidationPending, Verify("CSQU305438"))
	require.Equal(t, models.ValidationPending, Verify("garbage"))
}
