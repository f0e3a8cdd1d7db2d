package ocr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModeDefault, m)

	m, err = ParseMode("digits_only")
	require.NoError(t, err)
	require.Equal(t, ModeDigitsOnly, m)

	_, err = ParseMode("handwriting")
	require.Error(t, err)
}

func TestModeConfigs(t *testing.T) {
	cfg, ok := ModeContainerNumbers.Config()
	require.True(t, ok)
	require.Equal(t, PSMSingleWord, cfg.PageSegMode)
	require.Equal(t, "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", cfg.Whitelist)

	cfg, ok = ModeDefault.Config()
	require.True(t, ok)
	require.Equal(t, PSMSingleBlock, cfg.PageSegMode)
	require.Len(t, cfg.Whitelist, 62)

	cfg, ok = ModeSingleLine.Config()
	require.True(t, ok)
	require.Empty(t, cfg.Whitelist)

	_, ok = Mode("nope").Config()
	require.False(t, ok)
}

func TestModesSorted(t *testing.T) {
	require.Equal(t, []Mode{
		ModeContainerNumbers,
		ModeDefault,
		ModeDigitsOnly,
		ModeSingleLine,
		ModeSingleWord,
	}, Modes())
}
