package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerFormatsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "ocr")

	l.Info("Starting OCR processing", "filename", "a.png", "bytes", 42)
	out := buf.String()
	require.Contains(t, out, "[ocr] ")
	require.Contains(t, out, "[INFO] Starting OCR processing filename=a.png bytes=42")
}

func TestLoggerDropsDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "api").Warn("odd", "key")
	require.Contains(t, buf.String(), "[WARN] odd\n")
}
