package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// FileWriter stores the digest at a fixed path, replacing it atomically.
type FileWriter struct {
	path string
}

var _ ports.DigestWriter = (*FileWriter)(nil)

// NewFileWriter targets path; parent directories are created on write.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Path returns the destination file.
func (w *FileWriter) Path() string {
	return w.path
}

// WriteDigest writes through a temp file and rename. Every failure wraps domain.ErrRender.
func (w *FileWriter) WriteDigest(ctx context.Context, digest string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRender, err)
	}
	if w.path == "" {
		return fmt.Errorf("%w: output path is empty", domain.ErrRender)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrRender, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".digest-*")
	if err != nil {
		return fmt.Errorf("%w: temp file: %v", domain.ErrRender, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(digest); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %v", domain.ErrRender, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod: %v", domain.ErrRender, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", domain.ErrRender, err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", domain.ErrRender, w.path, err)
	}
	return nil
}
