package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps uploaded documents on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./documents"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// ObjectKey builds a collision-free relative key such as drivers/<id>/<uuid>.pdf.
func ObjectKey(ownerType, ownerID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return path.Join(ownerType, ownerID, uuid.NewString()+ext)
}

// Save copies r into key and returns the number of bytes written.
func (s *LocalStorage) Save(key string, r io.Reader) (int64, error) {
	full, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("prepare document directory: %w", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create document file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	n, err := io.Copy(file, r)
	if err != nil {
		_ = os.Remove(full)
		return 0, fmt.Errorf("write document: %w", err)
	}
	return n, nil
}

// Open returns a read-only handle for the stored document.
func (s *LocalStorage) Open(key string) (*os.File, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return file, nil
}

// Delete removes a stored document if present.
func (s *LocalStorage) Delete(key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// resolve rejects keys that would escape the base directory.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid document key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}
