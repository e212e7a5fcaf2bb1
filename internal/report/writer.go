package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteError is returned when the report file cannot be produced.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write report to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Render serializes the report in the format implied by the path extension:
// HTML for .html/.htm, JSON otherwise.
func Render(r *Report, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return GenerateHTML(r)
	default:
		data, err := r.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := Validate(data); err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// WriteFile renders the report and publishes it at path atomically.
//
// Data is written to a temporary file in the destination directory, synced,
// then renamed over path, so readers never observe a partial report.
func WriteFile(path string, r *Report) error {
	if r == nil {
		return &WriteError{Path: path, Err: fmt.Errorf("no report to write")}
	}

	data, err := Render(r, path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := writeAtomic(path, data); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	return nil
}
