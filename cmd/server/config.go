package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ipter/container-ocr-service/api"
	"github.com/ipter/container-ocr-service/internal/models"
)

func defaultConfig() models.Config {
	return models.Config{
		Port: 8001,
		Host: "0.0.0.0",
		OCR: models.OCRConfig{
			Engine:        "tesseract",
			Language:      "eng",
			TesseractPath: "tesseract",
		},
		Imaging: models.ImagingConfig{Backend: "native"},
		Upload:  models.UploadConfig{MaxBytes: api.MaxUploadSize},
	}
}

// loadConfig reads the YAML file over the defaults and applies environment
// overrides. A missing file leaves the defaults in place.
func loadConfig(path string) (*models.Config, error) {
	config := defaultConfig()

	// Read config file
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Parse YAML
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	if backend := os.Getenv("IMAGING_BACKEND"); backend != "" {
		config.Imaging.Backend = backend
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
		config.Storage.Enabled = true
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if region := os.Getenv("MINIO_REGION"); region != "" {
		config.Storage.Region = region
	}
	if useSSL := os.Getenv("MINIO_USE_SSL"); useSSL != "" {
		config.Storage.UseSSL = useSSL == "true"
	}
	if secret := os.Getenv("SERVICE_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	if config.Upload.MaxBytes <= 0 {
		config.Upload.MaxBytes = api.MaxUploadSize
	}
	if config.Imaging.Backend != "native" && config.Imaging.Backend != "gocv" {
		return nil, fmt.Errorf("unknown imaging backend %q", config.Imaging.Backend)
	}

	return &config, nil
}
