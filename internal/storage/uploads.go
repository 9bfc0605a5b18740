package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clauselens/internal/config"
)

// UploadStore keeps the raw bytes of uploaded documents in an object store,
// keyed by a generated document id.
type UploadStore struct {
	client *minio.Client
	bucket string
}

// NewUploadStore connects to the object store and ensures the configured
// bucket exists.
func NewUploadStore(ctx context.Context, cfg config.MinIOConfig) (*UploadStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("object store health check failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.Bucket, err)
		}
	}

	return &UploadStore{client: client, bucket: cfg.Bucket}, nil
}

// Put stores the document bytes and returns the generated document id.
func (s *UploadStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	docID := uuid.New().String()
	_, err := s.client.PutObject(ctx, s.bucket, docID, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}
	return docID, nil
}

// Get returns the stored bytes for a document id.
func (s *UploadStore) Get(ctx context.Context, docID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, docID, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document '%s': %w", docID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read document '%s': %w", docID, err)
	}
	return data, nil
}
