package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalImageStore writes images into a directory on disk. Filenames embed a
// millisecond timestamp so concurrent uploads do not collide.
type LocalImageStore struct {
	Dir string
}

func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{Dir: dir}, nil
}

func (s *LocalImageStore) Save(_ context.Context, r io.Reader, originalName, _ string) (string, error) {
	name := fmt.Sprintf("profile-%d%s", time.Now().UnixMilli(), filepath.Ext(originalName))
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

var _ ImageStore = (*LocalImageStore)(nil)
