// Package store persists experiment records as a single self-describing
// JSON document. Writes are atomic (temp file plus rename in the target
// directory) so a crash mid-write never leaves a partially-written result
// file, and loading a saved document reproduces the records exactly.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ahrav/go-prompteval/internal/domain"
)

// ErrSerialization indicates the record set could not be written or read as
// a structured document. It is never masked: unrecorded experiment results
// are unrecoverable.
var ErrSerialization = errors.New("record serialization failed")

// Document is the persisted unit: an identified run and its ordered record
// sequence. Records are immutable history once written.
type Document struct {
	RunID     string          `json:"run_id"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	CreatedAt time.Time       `json:"created_at"`
	Records   []domain.Record `json:"records"`
}

// FileStore reads and writes documents at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// Save writes the document atomically: marshal, write to a temp file in the
// destination directory, then rename over the target. All-or-nothing; on
// any failure the previous file (if any) is untouched.
func (s *FileStore) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrSerialization, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", ErrSerialization, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", ErrSerialization, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %w", ErrSerialization, tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming to %s: %w", ErrSerialization, s.path, err)
	}
	return nil
}

// Load reads a previously saved document.
func (s *FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrSerialization, s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrSerialization, s.path, err)
	}
	return &doc, nil
}
