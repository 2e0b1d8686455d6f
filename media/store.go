package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Optimizer turns a raw image file into a stored, optimised photo and
// returns its filename.
type Optimizer interface {
	OptimizeAndStore(ctx context.Context, srcPath string) (string, error)
}

// Mirror receives a copy of every stored photo.
type Mirror interface {
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// FileStore keeps optimised photos in a local directory, optionally
// mirroring them to remote storage.
type FileStore struct {
	dir    string
	mirror Mirror
}

// NewFileStore creates the media directory if needed.
func NewFileStore(dir string, mirror Mirror) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &FileStore{dir: dir, mirror: mirror}, nil
}

// Dir returns the media directory.
func (s *FileStore) Dir() string { return s.dir }

// OptimizeAndStore re-encodes the image at srcPath and stores it under a
// random "<uuid>.jpg" name.
func (s *FileStore) OptimizeAndStore(ctx context.Context, srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()
	return s.Save(ctx, f)
}

// Save optimises the image read from r and stores it.
func (s *FileStore) Save(ctx context.Context, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if err := Optimize(r, &buf); err != nil {
		return "", err
	}

	name := uuid.New().String() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, name, buf.Bytes()); err != nil {
			slog.Warn("photo mirror upload failed", "file", name, "error", err)
		}
	}
	return name, nil
}

// Path returns the on-disk path of a stored photo. The name is reduced to
// its base so callers cannot escape the media directory.
func (s *FileStore) Path(name string) (string, error) {
	clean := SafeName(name)
	if clean == "" {
		return "", fmt.Errorf("invalid media filename %q", name)
	}
	return filepath.Join(s.dir, clean), nil
}

// Exists reports whether a stored photo is present on disk.
func (s *FileStore) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Remove deletes a stored photo. Missing files are not an error.
func (s *FileStore) Remove(ctx context.Context, name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove photo: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, filepath.Base(p)); err != nil {
			slog.Warn("photo mirror delete failed", "file", name, "error", err)
		}
	}
	return nil
}

// SafeName strips any directory components from a media filename.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." || strings.HasPrefix(base, ".") {
		return ""
	}
	return base
}

// AllowedUpload reports whether an uploaded filename has a supported image
// extension.
func AllowedUpload(filename string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "png", "jpg", "jpeg", "gif", "webp":
		return true
	}
	return false
}
