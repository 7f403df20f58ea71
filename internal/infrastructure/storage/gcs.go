package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*gcs.Client, error) {
	if credsPath == "" {
		return gcs.NewClient(ctx)
	}
	return gcs.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSImageStore uploads profile images to a GCS bucket and returns the public
// object URL.
type GCSImageStore struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSImageStore(client *gcs.Client, bucket string) *GCSImageStore {
	return &GCSImageStore{Client: client, Bucket: bucket}
}

func (s *GCSImageStore) Save(ctx context.Context, r io.Reader, originalName, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	objectPath := "profiles/" + uuid.NewString() + ext

	w := s.Client.Bucket(s.Bucket).Object(objectPath).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.Bucket, objectPath), nil
}

var _ ImageStore = (*GCSImageStore)(nil)
