package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipter/container-ocr-service/api"
	"github.com/ipter/container-ocr-service/internal/ocr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8001, cfg.Port)
	require.Equal(t, "eng", cfg.OCR.Language)
	require.Equal(t, "native", cfg.Imaging.Backend)
	require.Equal(t, int64(api.MaxUploadSize), cfg.Upload.MaxBytes)
	require.False(t, cfg.Storage.Enabled)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
port: 9000
host: 127.0.0.1
ocr:
  language: spa
imaging:
  backend: gocv
upload:
  max_bytes: 2048
storage:
  enabled: true
  bucket: debug
auth:
  jwt_secret: abc
  issuer: ipter
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "127.0.0.1", cfg.Host)
	require.Equal(t, "spa", cfg.OCR.Language)
	require.Equal(t, "tesseract", cfg.OCR.Engine)
	require.Equal(t, "gocv", cfg.Imaging.Backend)
	require.Equal(t, int64(2048), cfg.Upload.MaxBytes)
	require.True(t, cfg.Storage.Enabled)
	require.Equal(t, "debug", cfg.Storage.Bucket)
	require.Equal(t, "abc", cfg.Auth.JWTSecret)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "port: 9000\n")
	t.Setenv("PORT", "7000")
	t.Setenv("HOST", "localhost")
	t.Setenv("OCR_LANGUAGE", "deu")
	t.Setenv("MINIO_ENDPOINT", "minio.local:9000")
	t.Setenv("MINIO_BUCKET", "snaps")
	t.Setenv("MINIO_REGION", "eu-west-1")
	t.Setenv("SERVICE_JWT_SECRET", "topsecret")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.Port)
	require.Equal(t, "localhost", cfg.Host)
	require.Equal(t, "deu", cfg.OCR.Language)
	require.True(t, cfg.Storage.Enabled)
	require.Equal(t, "minio.local:9000", cfg.Storage.Endpoint)
	require.Equal(t, "snaps", cfg.Storage.Bucket)
	require.Equal(t, "eu-west-1", cfg.Storage.Region)
	require.Equal(t, "topsecret", cfg.Auth.JWTSecret)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "port: [oops"))
	require.Error(t, err)

	_, err = loadConfig(writeConfig(t, "imaging:\n  backend: cuda\n"))
	require.Error(t, err)
}

func TestSelectNormalizerFallsBackToNative(t *testing.T) {
	require.Equal(t, "native", selectNormalizer("native").Name())
	require.Contains(t, []string{"native", "gocv"}, selectNormalizer("gocv").Name())
}

func TestJoinModes(t *testing.T) {
	require.Equal(t, "default, digits_only", joinModes([]ocr.Mode{ocr.ModeDefault, ocr.ModeDigitsOnly}))
}
