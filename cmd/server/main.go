package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ipter/container-ocr-service/api"
	"github.com/ipter/container-ocr-service/internal/auth"
	"github.com/ipter/container-ocr-service/internal/imaging"
	"github.com/ipter/container-ocr-service/internal/imaging/cv"
	"github.com/ipter/container-ocr-service/internal/ocr"
	"github.com/ipter/container-ocr-service/internal/storage"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Probe the engine once; the version is read-only afterwards
	version, err := ocr.EngineVersion()
	if err != nil {
		log.Printf("Warning: could not get Tesseract version: %v", err)
	}
	engine := ocr.EngineInfo{Name: ocr.EngineName, Version: version}

	normalizer := selectNormalizer(config.Imaging.Backend)

	opts := []ocr.Option{}
	var snapshots *storage.SnapshotStore
	if config.Storage.Enabled {
		snapshots, err = storage.New(context.Background(), config.Storage)
		if err != nil {
			log.Printf("Warning: MinIO storage not available: %v", err)
			log.Println("Snapshots will not be stored")
		} else {
			opts = append(opts, ocr.WithSnapshotSink(snapshots))
			log.Println("MinIO snapshot storage initialized")
		}
	}

	service := ocr.NewService(engine, normalizer, ocr.NewTesseractOCR(config.OCR.Language), opts...)

	authenticator := auth.NewAuthenticator(config.Auth)
	if authenticator.Enabled() {
		log.Println("JWT service authentication enabled")
	}

	// Create API handler
	var storageChecker api.StorageChecker
	if snapshots != nil {
		storageChecker = snapshots
	}
	handler := api.NewHandler(config, service, authenticator, storageChecker)
	router := handler.SetupRoutes()

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting %s v%s on %s", api.ServiceName, api.Version, addr)
	log.Printf("OCR Engine: %s %s (%s)", engine.Name, engine.Version, config.OCR.Language)
	log.Printf("Imaging backend: %s", normalizer.Name())
	log.Printf("Recognition modes: %s", joinModes(ocr.Modes()))
	log.Printf("Storage: %v", snapshots != nil)
	log.Printf("Endpoints:")
	log.Printf("  GET  http://%s/                        - Service info", addr)
	log.Printf("  GET  http://%s/health                  - Health check", addr)
	log.Printf("  POST http://%s/ocr/extract-text        - Extract text", addr)
	log.Printf("  POST http://%s/ocr/extract-containers  - Extract container numbers", addr)
	log.Printf("  POST http://%s/ocr/process-image       - Process with options", addr)
	log.Printf("  POST http://%s/ocr/check-digit         - Compute check digit", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// selectNormalizer falls back to the pure Go chains when OpenCV support
// was not compiled in
func selectNormalizer(backend string) imaging.Normalizer {
	if backend == "gocv" {
		n, err := cv.NewNormalizer()
		if err == nil {
			return n
		}
		log.Printf("Warning: gocv backend unavailable (%v), using native", err)
	}
	return imaging.NewNative()
}

func joinModes(modes []ocr.Mode) string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
