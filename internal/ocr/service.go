package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ipter/container-ocr-service/internal/container"
	apperrors "github.com/ipter/container-ocr-service/internal/errors"
	"github.com/ipter/container-ocr-service/internal/imaging"
	"github.com/ipter/container-ocr-service/internal/logging"
	"github.com/ipter/container-ocr-service/internal/models"
)

// SnapshotSink receives the normalized image of each request
type SnapshotSink interface {
	StoreSnapshot(ctx context.Context, processingID string, img *imaging.PixelImage) (string, error)
}

// Request tunes a general text extraction
type Request struct {
	Options          imaging.Options
	Mode             Mode
	VerifyCheckDigit bool
}

// DefaultRequest runs every normalization step in the default mode
func DefaultRequest() Request {
	return Request{Options: imaging.DefaultOptions(), Mode: ModeDefault}
}

// Service runs the decode, normalize, recognize and assemble pipeline. It
// holds no per-request state and is safe for concurrent use.
type Service struct {
	engine     EngineInfo
	normalizer imaging.Normalizer
	recognizer Recognizer
	snapshots  SnapshotSink
	logger     *logging.Logger
}

// Option configures a Service
type Option func(*Service)

// WithSnapshotSink uploads every normalized image to sink
func WithSnapshotSink(sink SnapshotSink) Option {
	return func(s *Service) { s.snapshots = sink }
}

// WithLogger replaces the default logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the OCR pipeline
func NewService(engine EngineInfo, normalizer imaging.Normalizer, recognizer Recognizer, opts ...Option) *Service {
	s := &Service{
		engine:     engine,
		normalizer: normalizer,
		recognizer: recognizer,
		logger:     logging.NewLogger("ocr"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine reports the recognition engine resolved at startup
func (s *Service) Engine() EngineInfo {
	return s.engine
}

// Backend names the normalization backend in use
func (s *Service) Backend() string {
	return s.normalizer.Name()
}

// ExtractText runs the configurable normalization chain and recognizes the
// image in req.Mode. Failures come back as a result with Success false.
func (s *Service) ExtractText(ctx context.Context, data []byte, filename string, req Request) models.OCRResult {
	mode := req.Mode
	if mode == "" {
		mode = ModeDefault
	}
	normalize := func(img *imaging.PixelImage) apperrors.Result[imaging.Normalized] {
		return s.normalizer.Normalize(img, req.Options)
	}
	return s.process(ctx, data, filename, mode, req.VerifyCheckDigit, normalize)
}

// ExtractContainers uses the container-specific chain and the
// container_numbers mode.
func (s *Service) ExtractContainers(ctx context.Context, data []byte, filename string, verify bool) models.OCRResult {
	return s.process(ctx, data, filename, ModeContainerNumbers, verify, s.normalizer.NormalizeForContainers)
}

func (s *Service) process(
	ctx context.Context,
	data []byte,
	filename string,
	mode Mode,
	verify bool,
	normalize func(*imaging.PixelImage) apperrors.Result[imaging.Normalized],
) (result models.OCRResult) {
	start := time.Now()
	processingID := uuid.New().String()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("OCR pipeline panicked", "processing_id", processingID, "filename", filename, "panic", r)
			result = s.failure(processingID, filename, start, fmt.Errorf("internal error: %v", r))
		}
	}()

	s.logger.Info("Starting OCR processing", "processing_id", processingID, "filename", filename, "mode", mode, "bytes", len(data))

	img, meta, err := imaging.Decode(data)
	if err != nil {
		stageErr := apperrors.NewDecodeFailedError(err)
		s.logger.Error("Decode failed", stageFields(processingID, stageErr)...)
		return s.failure(processingID, filename, start, stageErr)
	}

	norm := normalize(img)
	if norm.Failed() {
		s.logger.Warn("Normalization failed, recognizing original image", stageFields(processingID, norm.Err)...)
	}
	normalized := norm.Value

	s.storeSnapshot(ctx, processingID, normalized.Image)

	rec, err := s.recognizer.Recognize(ctx, normalized.Image, mode)
	if err != nil {
		stageErr := apperrors.NewOCRFailedError(string(mode), err)
		s.logger.Error("Recognition failed", stageFields(processingID, stageErr)...)
		return s.failure(processingID, filename, start, stageErr)
	}

	assembly := Assemble(rec.Text, rec.Tokens)
	if verify {
		for i := range assembly.Identifiers {
			assembly.Identifiers[i].ValidationStatus = container.Verify(assembly.Identifiers[i].Number)
		}
	}

	s.logger.Info("OCR processing completed",
		"processing_id", processingID,
		"containers", len(assembly.Identifiers),
		"confidence", fmt.Sprintf("%.2f", assembly.Confidence),
		"steps", strings.Join(normalized.Steps, ","),
	)

	return models.OCRResult{
		ProcessingID:     processingID,
		Filename:         filename,
		ExtractedText:    strings.TrimSpace(rec.Text),
		ContainerNumbers: assembly.Identifiers,
		Confidence:       assembly.Confidence,
		BoundingBoxes:    assembly.Boxes,
		ImageMetadata:    meta,
		ProcessingMetadata: models.ProcessingMetadata{
			ProcessingTime:       time.Since(start).Seconds(),
			Engine:               s.engine.Name,
			EngineVersion:        s.engine.Version,
			PreprocessingApplied: normalized.Steps,
			ScaleFactor:          normalized.Scale,
			Timestamp:            time.Now(),
		},
		Success: true,
	}
}

// failure builds the well-formed result every failed request returns
func (s *Service) failure(processingID, filename string, start time.Time, err error) models.OCRResult {
	return models.OCRResult{
		ProcessingID:     processingID,
		Filename:         filename,
		ContainerNumbers: []models.ContainerNumber{},
		BoundingBoxes:    []models.BoundingBox{},
		ProcessingMetadata: models.ProcessingMetadata{
			ProcessingTime:       time.Since(start).Seconds(),
			Engine:               s.engine.Name,
			EngineVersion:        s.engine.Version,
			PreprocessingApplied: []string{},
			ScaleFactor:          1,
			Timestamp:            time.Now(),
		},
		Success:      false,
		ErrorMessage: err.Error(),
	}
}

func (s *Service) storeSnapshot(ctx context.Context, processingID string, img *imaging.PixelImage) {
	if s.snapshots == nil {
		return
	}
	object, err := s.snapshots.StoreSnapshot(ctx, processingID, img)
	if err != nil {
		s.logger.Warn("Snapshot upload failed", "processing_id", processingID, "error", err)
		return
	}
	s.logger.Debug("Snapshot stored", "processing_id", processingID, "object", object)
}

func stageFields(processingID string, err *apperrors.StageError) []interface{} {
	fields := []interface{}{"processing_id", processingID}
	for k, v := range err.ToMap() {
		fields = append(fields, k, v)
	}
	return fields
}
