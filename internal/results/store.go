// Package results persists scenario result documents and comparison reports
// as indented JSON. Writes are guarded by an advisory file lock and use a
// temp-then-rename strategy so concurrent runs targeting the same path never
// interleave and readers never observe a partial file.
package results

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/segmentio/encoding/json"

	"github.com/harrison/proctor/internal/models"
)

// DefaultPath is the conventional location for one run's document:
// {resultsDir}/{scenario}-{mode}.json.
func DefaultPath(resultsDir, scenarioName, mode string) string {
	return filepath.Join(resultsDir, scenarioName+"-"+mode+".json")
}

// SaveDocument writes a result document to path.
func SaveDocument(doc *models.ResultDocument, path string) error {
	return save(doc, path)
}

// SaveReport writes a comparison report to path.
func SaveReport(report *models.ComparisonReport, path string) error {
	return save(report, path)
}

// LoadDocument reads one persisted result document.
func LoadDocument(path string) (*models.ResultDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}

	var doc models.ResultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse results file %s: %w", path, err)
	}
	return &doc, nil
}

func save(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	return atomicWrite(path, data)
}

// atomicWrite writes data via a temp file in the target directory and an
// atomic rename, leaving any existing file untouched on failure.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tmp = nil
	return nil
}
