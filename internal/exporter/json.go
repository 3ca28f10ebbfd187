package exporter

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// JSONWriter writes the full dataset as a single JSON document
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a JSON writer for path
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Export writes ds atomically: the document is written to a temporary file
// in the same directory and renamed into place.
func (w *JSONWriter) Export(ds *domain.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return apperrors.NewExportError("failed to encode dataset", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return apperrors.NewExportError("failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewExportError("failed to write dataset", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewExportError("failed to write dataset", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return apperrors.NewExportError("failed to move dataset into place", err).WithContext("path", w.path)
	}

	slog.Debug("Dataset written", slog.String("path", w.path), slog.Int("bytes", len(data)))
	return nil
}
