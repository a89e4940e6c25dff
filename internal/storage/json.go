// Package storage reads and writes document files on disk.
package storage

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// JSONStore handles JSON file persistence. It moves bytes only; decoding
// belongs to the model.
type JSONStore struct {
	FilePath string

	// Backups, when set, receives the previous file content before every
	// write that replaces an existing file.
	Backups   *BackupManager
	SessionID string
}

// NewJSONStore creates a new JSON store for the given file path
func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{
		FilePath: filePath,
	}
}

// Read returns the file content. A missing file reads as an empty forest.
func (s *JSONStore) Read() ([]byte, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("[]"), nil
		}
		return nil, errors.Errorf("%w: failed to read %s: %w", model.ErrIOFailure, s.FilePath, err)
	}
	return data, nil
}

// Write replaces the file content. The data goes to a temporary file in the
// same directory first and is renamed into place, so readers never see a
// partial document.
func (s *JSONStore) Write(data []byte) error {
	dir := filepath.Dir(s.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("%w: failed to create directory: %w", model.ErrIOFailure, err)
		}
	}

	if s.Backups != nil && s.FileExists() {
		previous, err := os.ReadFile(s.FilePath)
		if err != nil {
			return errors.Errorf("%w: failed to read previous content: %w", model.ErrIOFailure, err)
		}
		if _, err := s.Backups.CreateBackup(previous, s.FilePath, s.SessionID); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.FilePath)+".*")
	if err != nil {
		return errors.Errorf("%w: failed to create temporary file: %w", model.ErrIOFailure, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("%w: failed to write file: %w", model.ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("%w: failed to write file: %w", model.ErrIOFailure, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Errorf("%w: failed to write file: %w", model.ErrIOFailure, err)
	}
	if err := os.Rename(tmp.Name(), s.FilePath); err != nil {
		return errors.Errorf("%w: failed to replace %s: %w", model.ErrIOFailure, s.FilePath, err)
	}
	return nil
}

// FileExists checks if the document file exists
func (s *JSONStore) FileExists() bool {
	_, err := os.Stat(s.FilePath)
	return err == nil
}
