// Package storage keeps uploaded profile images on the local filesystem and
// serves them back through a public base URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/adminhub/user-accounts/internal/core/ports"
	"github.com/adminhub/user-accounts/internal/core/validation"
)

// ErrNotImage is returned when the upload content is not a supported image type.
var ErrNotImage = errors.New("storage: content is not a supported image")

// LocalImageStore implements ports.ImageStore on a directory.
type LocalImageStore struct {
	dir     string
	baseURL string
}

// NewLocalImageStore creates the upload directory if needed. baseURL is the
// public prefix under which dir is served.
func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{dir: dir, baseURL: baseURL}, nil
}

// Save writes the upload under a random name and returns its public URL.
func (s *LocalImageStore) Save(ctx context.Context, upload ports.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext, ok := validation.ImageExtension(upload.Data)
	if !ok {
		return "", ErrNotImage
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.baseURL + name, nil
}

// Delete removes the file behind url. URLs outside the store and files that
// are already gone are ignored.
func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, ok := strings.CutPrefix(url, s.baseURL)
	if !ok || name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
