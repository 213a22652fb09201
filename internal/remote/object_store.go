package remote

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// gcsObjectStore implements ObjectStore against a Cloud Storage bucket.
type gcsObjectStore struct {
	bucket *storage.BucketHandle
	logger *zap.Logger
}

// NewGCSObjectStore creates an ObjectStore backed by the given bucket handle.
func NewGCSObjectStore(bucket *storage.BucketHandle, logger *zap.Logger) ObjectStore {
	if bucket == nil {
		panic("Storage bucket is not initialized for GCSObjectStore")
	}
	return &gcsObjectStore{bucket: bucket, logger: logger.Named("storage")}
}

func (s *gcsObjectStore) Upload(ctx context.Context, path string, r io.Reader, contentType string) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	s.logger.Debug("object uploaded", zap.String("path", path))
	return nil
}

func (s *gcsObjectStore) DownloadURL(ctx context.Context, path string) (string, error) {
	attrs, err := s.bucket.Object(path).Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve URL for %s: %w", path, err)
	}
	return attrs.MediaLink, nil
}
