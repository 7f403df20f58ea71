package storage

import (
	"context"
	"io"
)

// ImageStore persists uploaded profile images. Save returns the reference the
// client uses to fetch the image afterwards: a bare filename for the local
// store (served under /uploads) or a public URL for GCS.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader, originalName, contentType string) (string, error)
}
