package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/ipter/container-ocr-service/internal/errors"
	"github.com/ipter/container-ocr-service/internal/imaging"
	"github.com/ipter/container-ocr-service/internal/models"
)

const snapshotContentType = "image/png"

// SnapshotStore uploads normalized images to MinIO for debugging
// recognition quality.
type SnapshotStore struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// withDefaults fills the connection settings the config left empty
func withDefaults(cfg models.StorageConfig) models.StorageConfig {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "minio:9000"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "ocr-snapshots"
	}
	// A fixed region skips the bucket location lookup
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg
}

// New connects to MinIO and verifies the snapshot bucket exists
func New(ctx context.Context, cfg models.StorageConfig) (*SnapshotStore, error) {
	cfg = withDefaults(cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &SnapshotStore{client: client, bucket: cfg.Bucket, now: time.Now}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.Check(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Bucket is the bucket snapshots are written to
func (s *SnapshotStore) Bucket() string {
	return s.bucket
}

// Check verifies the bucket is reachable
func (s *SnapshotStore) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

// StoreSnapshot uploads img as PNG and returns "{bucket}/{object}"
func (s *SnapshotStore) StoreSnapshot(ctx context.Context, processingID string, img *imaging.PixelImage) (string, error) {
	objectName := ObjectName(s.now(), processingID)

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", apperrors.NewStorageFailedError(objectName, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: snapshotContentType,
	})
	if err != nil {
		return "", apperrors.NewStorageFailedError(objectName, err)
	}

	return fmt.Sprintf("%s/%s", s.bucket, objectName), nil
}

// ObjectName lays snapshots out as snapshots/YYYY/MM/DD/{processing_id}.png
func ObjectName(t time.Time, processingID string) string {
	return fmt.Sprintf("snapshots/%d/%02d/%02d/%s.png",
		t.Year(),
		t.Month(),
		t.Day(),
		processingID,
	)
}
