// Package scenario loads evaluation scenario definitions from disk.
//
// A scenario lives in its own directory as scenario.json or scenario.yaml
// and is immutable once loaded. Decoding tolerates unknown keys: a criterion
// of an unrecognized type may carry parameters no known criterion declares,
// and it must still load so the run can record an unknown-check-type outcome
// instead of failing up front.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/harrison/proctor/internal/models"
)

// definitionNames are the file names tried when resolving a scenario
// directory, in preference order.
var definitionNames = [...]string{"scenario.json", "scenario.yaml", "scenario.yml"}

// Load reads and validates a single scenario definition file.
// The format is chosen by extension: .json, .yaml, or .yml.
func Load(path string) (*models.Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer file.Close()

	var s models.Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.NewDecoder(file).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q (supported: .json, .yaml, .yml)", ext)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// Resolve maps a scenario argument to its definition file. An argument
// naming an existing file is used as-is; an existing directory is searched
// for a definition; anything else is treated as a scenario name under dir.
func Resolve(arg, dir string) (string, error) {
	if info, err := os.Stat(arg); err == nil {
		if !info.IsDir() {
			return arg, nil
		}
		if path, ok := definitionIn(arg); ok {
			return path, nil
		}
	}
	if path, ok := definitionIn(filepath.Join(dir, arg)); ok {
		return path, nil
	}
	return "", fmt.Errorf("scenario %q not found (no scenario definition under %s)", arg, filepath.Join(dir, arg))
}

// Entry is one discovered scenario: the directory name it is looked up by
// and the definition file inside it.
type Entry struct {
	Name string
	Path string
}

// Discover lists the scenarios one level under dir. Directories without a
// definition file are skipped. os.ReadDir sorts by name, so the result is
// deterministic.
func Discover(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var entries []Entry
	for _, ent := range dirents {
		if !ent.IsDir() || strings.HasPrefix(ent.Name(), ".") {
			continue
		}
		if path, ok := definitionIn(filepath.Join(dir, ent.Name())); ok {
			entries = append(entries, Entry{Name: ent.Name(), Path: path})
		}
	}
	return entries, nil
}

func definitionIn(dir string) (string, bool) {
	for _, name := range definitionNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
