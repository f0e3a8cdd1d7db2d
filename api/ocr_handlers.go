package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ipter/container-ocr-service/internal/auth"
	"github.com/ipter/container-ocr-service/internal/container"
	apperrors "github.com/ipter/container-ocr-service/internal/errors"
	"github.com/ipter/container-ocr-service/internal/imaging"
	"github.com/ipter/container-ocr-service/internal/models"
	"github.com/ipter/container-ocr-service/internal/ocr"
)

// upload is an accepted image file
type upload struct {
	data     []byte
	filename string
}

// readUpload enforces the size cap and the image content type before any
// processing. It writes the error response itself and returns false on
// rejection.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	limit := h.maxUploadBytes()

	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, http.StatusBadRequest, "File size too large", fmt.Sprintf("Maximum size is %dMB.", limit/1024/1024))
			return upload{}, false
		}
		h.sendError(w, http.StatusBadRequest, "Invalid form data", err.Error())
		return upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file provided", "use the 'file' field")
		return upload{}, false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		stageErr := apperrors.NewUnsupportedFormatError(contentType)
		h.logger.Warn("Rejected upload", "filename", header.Filename, "error_code", stageErr.Code,
			"mime_type", contentType, "caller", callerService(r))
		h.sendError(w, http.StatusBadRequest, "Invalid file type",
			fmt.Sprintf("Invalid file type: %s. Only image files are supported.", contentType))
		return upload{}, false
	}

	if header.Size > limit {
		h.sendError(w, http.StatusBadRequest, "File size too large", fmt.Sprintf("Maximum size is %dMB.", limit/1024/1024))
		return upload{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file", err.Error())
		return upload{}, false
	}

	filename := header.Filename
	if filename == "" {
		filename = "unknown"
	}

	h.logger.Info("Processing image", "filename", filename, "size", len(data), "caller", callerService(r))
	return upload{data: data, filename: filename}, true
}

// callerService names the authenticated service behind a request
func callerService(r *http.Request) string {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		return "anonymous"
	}
	return claims.Service
}

// ExtractText runs the general pipeline. Failed results become a 500.
func (h *Handler) ExtractText(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result := h.service.ExtractText(r.Context(), up.data, up.filename, ocr.DefaultRequest())
	if !result.Success {
		h.sendError(w, http.StatusInternalServerError, "OCR processing failed", result.ErrorMessage)
		return
	}

	h.logger.Info("Successfully processed image", "filename", up.filename, "containers", len(result.ContainerNumbers))
	h.sendJSON(w, http.StatusOK, result)
}

// ExtractContainers runs the container-optimized pipeline
func (h *Handler) ExtractContainers(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	verify := r.FormValue("verify_check_digit") == "true"
	result := h.service.ExtractContainers(r.Context(), up.data, up.filename, verify)
	if !result.Success {
		h.sendError(w, http.StatusInternalServerError, "Container extraction failed", result.ErrorMessage)
		return
	}

	h.logger.Info("Container extraction completed", "filename", up.filename, "containers", len(result.ContainerNumbers))
	h.sendJSON(w, http.StatusOK, result)
}

// ProcessImage accepts an optional JSON "request" form field and always
// answers 200 with the outcome wrapped in a ProcessImageResponse.
func (h *Handler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	// Without a request field the general text chain runs.
	var req models.ProcessImageRequest
	if raw := r.FormValue("request"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			h.sendError(w, http.StatusBadRequest, "Invalid request options", err.Error())
			return
		}
	}

	mode, err := ocr.ParseMode(req.Mode)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request options", err.Error())
		return
	}

	var result models.OCRResult
	if req.ExtractContainerNumbers {
		result = h.service.ExtractContainers(r.Context(), up.data, up.filename, req.VerifyCheckDigit)
	} else {
		opts := imaging.DefaultOptions()
		if req.PreprocessingOptions != nil {
			opts = *req.PreprocessingOptions
		}
		result = h.service.ExtractText(r.Context(), up.data, up.filename, ocr.Request{
			Options:          opts,
			Mode:             mode,
			VerifyCheckDigit: req.VerifyCheckDigit,
		})
	}

	response := models.ProcessImageResponse{
		Success:      result.Success,
		ProcessingID: result.ProcessingID,
	}
	if result.Success {
		response.Result = &result
	} else {
		response.Error = result.ErrorMessage
	}
	h.sendJSON(w, http.StatusOK, response)
}

// CheckDigit computes the check digit for an identifier with or without
// its final digit.
func (h *Handler) CheckDigit(w http.ResponseWriter, r *http.Request) {
	var req models.CheckDigitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	id := container.Clean(req.Identifier)
	if len(id) != 10 && len(id) != 11 {
		h.sendError(w, http.StatusBadRequest, "Invalid identifier", "expected 10 or 11 characters")
		return
	}

	digit, err := container.CheckDigit(id[:10])
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid identifier", err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, models.CheckDigitResponse{
		Identifier: id,
		CheckDigit: digit,
		ValidShape: container.IsValidShape(id),
		Status:     container.Verify(id),
	})
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
