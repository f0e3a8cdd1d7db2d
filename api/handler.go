package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ipter/container-ocr-service/internal/auth"
	"github.com/ipter/container-ocr-service/internal/logging"
	"github.com/ipter/container-ocr-service/internal/models"
	"github.com/ipter/container-ocr-service/internal/ocr"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.0.0"
	ServiceName   = "IPTER AI Services"

	// multipart boundaries and headers on top of the file itself
	formOverhead = 1024 * 1024
)

// StorageChecker is the part of the snapshot store the health check uses
type StorageChecker interface {
	Check(ctx context.Context) error
	Bucket() string
}

// Handler handles HTTP requests for image OCR
type Handler struct {
	config         *models.Config
	service        *ocr.Service
	authenticator  *auth.Authenticator
	storage        StorageChecker
	logger         *logging.Logger
	probeTesseract func() ServiceStatus
}

// NewHandler creates a new API handler. storage may be nil when snapshots
// are disabled.
func NewHandler(config *models.Config, service *ocr.Service, authenticator *auth.Authenticator, storage StorageChecker) *Handler {
	h := &Handler{
		config:        config,
		service:       service,
		authenticator: authenticator,
		storage:       storage,
		logger:        logging.NewLogger("api"),
	}
	h.probeTesseract = h.checkTesseract
	return h
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Service info and health check
	router.HandleFunc("/", h.Root).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")

	// OCR endpoints
	router.HandleFunc("/ocr/extract-text", h.ExtractText).Methods("POST")
	router.HandleFunc("/ocr/extract-containers", h.ExtractContainers).Methods("POST")
	router.HandleFunc("/ocr/process-image", h.ProcessImage).Methods("POST")
	router.HandleFunc("/ocr/check-digit", h.CheckDigit).Methods("POST")

	if h.authenticator != nil && h.authenticator.Enabled() {
		router.Use(h.authenticator.Middleware)
	}

	return router
}

// maxUploadBytes is the configured file size cap
func (h *Handler) maxUploadBytes() int64 {
	if h.config != nil && h.config.Upload.MaxBytes > 0 {
		return h.config.Upload.MaxBytes
	}
	return MaxUploadSize
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status       string                   `json:"status"`
	Service      string                   `json:"service"`
	Version      string                   `json:"version"`
	Timestamp    string                   `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	Memory       *MemoryStats             `json:"memory,omitempty"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Root returns basic service information without probing dependencies
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	engine := h.service.Engine()
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Dependencies: map[string]ServiceStatus{
			"tesseract": {Available: true, Version: engine.Version},
			"imaging":   {Available: true, Version: h.service.Backend()},
		},
	})
}

// Health endpoint - probes the engine binary and the snapshot store
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := h.probeTesseract()
	storageStatus := h.checkStorage(r.Context())

	response := HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: &MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Dependencies: map[string]ServiceStatus{
			"tesseract": tesseractStatus,
			"imaging":   {Available: true, Version: h.service.Backend()},
			"storage":   storageStatus,
		},
	}

	// The engine is the only critical dependency
	if !tesseractStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkTesseract verifies the Tesseract binary is available
func (h *Handler) checkTesseract() ServiceStatus {
	binary := "tesseract"
	if h.config != nil && h.config.OCR.TesseractPath != "" {
		binary = h.config.OCR.TesseractPath
	}

	cmd := exec.Command(binary, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "tesseract not found or not executable",
		}
	}

	version := h.service.Engine().Version
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkStorage verifies the MinIO snapshot bucket
func (h *Handler) checkStorage(ctx context.Context) ServiceStatus {
	if h.storage == nil {
		return ServiceStatus{
			Available: false,
			Error:     "snapshot storage disabled",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.storage.Check(ctx); err != nil {
		return ServiceStatus{
			Available: false,
			Error:     err.Error(),
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3 bucket " + h.storage.Bucket(),
	}
}

// sendError writes an ErrorResponse with the given status
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:     message,
		Detail:    detail,
		Timestamp: time.Now(),
	})
}
