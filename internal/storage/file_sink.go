// Package storage persists the exported project structure document.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roksva123/go-wrike-export/internal/model"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// PersistenceError reports a failure to write the document.
type PersistenceError struct {
	Destination string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Destination, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// FileSink writes the document to Path. The file is replaced atomically, so a
// failed save leaves any previous document untouched.
type FileSink struct {
	Path   string
	Format string
}

func NewFileSink(path, format string) *FileSink {
	if format == "" {
		format = FormatJSON
	}
	return &FileSink{Path: path, Format: format}
}

// Destination returns the path the document is written to.
func (s *FileSink) Destination() string {
	return s.Path
}

// Save encodes doc and writes it to the sink's path.
func (s *FileSink) Save(ctx context.Context, doc []model.ProjectStructure) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Destination: s.Path, Err: err}
	}

	data, err := s.encode(doc)
	if err != nil {
		return &PersistenceError{Destination: s.Path, Err: err}
	}
	if err := writeAtomic(s.Path, data); err != nil {
		return &PersistenceError{Destination: s.Path, Err: err}
	}
	return nil
}

func (s *FileSink) encode(doc []model.ProjectStructure) ([]byte, error) {
	if doc == nil {
		doc = []model.ProjectStructure{}
	}
	switch s.Format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", s.Format)
	}
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
