package ocr

import (
	"fmt"
	"sort"
)

// Mode selects a recognition profile
type Mode string

const (
	ModeDefault          Mode = "default"
	ModeContainerNumbers Mode = "container_numbers"
	ModeSingleLine       Mode = "single_line"
	ModeSingleWord       Mode = "single_word"
	ModeDigitsOnly       Mode = "digits_only"
)

// Tesseract page segmentation modes used by the profiles
const (
	PSMSingleBlock = 6
	PSMSingleLine  = 7
	PSMSingleWord  = 8
)

const (
	digits       = "0123456789"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
)

// ModeConfig is the engine configuration behind a Mode
type ModeConfig struct {
	PageSegMode int
	Whitelist   string // empty means no restriction
}

// modeConfigs is read-only after package init
var modeConfigs = map[Mode]ModeConfig{
	ModeDefault:          {PageSegMode: PSMSingleBlock, Whitelist: digits + upperLetters + lowerLetters},
	ModeContainerNumbers: {PageSegMode: PSMSingleWord, Whitelist: digits + upperLetters},
	ModeSingleLine:       {PageSegMode: PSMSingleLine},
	ModeSingleWord:       {PageSegMode: PSMSingleWord},
	ModeDigitsOnly:       {PageSegMode: PSMSingleWord, Whitelist: digits},
}

// Config returns the engine configuration for m
func (m Mode) Config() (ModeConfig, bool) {
	cfg, ok := modeConfigs[m]
	return cfg, ok
}

// ParseMode validates a mode name. An empty name selects ModeDefault.
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return ModeDefault, nil
	}
	m := Mode(name)
	if _, ok := modeConfigs[m]; !ok {
		return "", fmt.Errorf("unknown recognition mode %q", name)
	}
	return m, nil
}

// Modes lists the known recognition modes in name order
func Modes() []Mode {
	out := make([]Mode, 0, len(modeConfigs))
	for m := range modeConfigs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
