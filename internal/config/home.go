package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Home returns the proctor state directory, used for the run-history
// database and other harness-local files.
// Priority order:
//  1. PROCTOR_HOME environment variable (if set)
//  2. .proctor under the evaluation workspace root (detected by an
//     evals/ directory or a .proctor-root marker in an ancestor)
//  3. .proctor under the current working directory
//
// The directory is created if it doesn't exist.
func Home() (string, error) {
	if home := os.Getenv("PROCTOR_HOME"); home != "" {
		return home, nil
	}

	if root, err := findWorkspaceRoot(); err == nil && root != "" {
		return ensureDir(filepath.Join(root, ".proctor"))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return ensureDir(filepath.Join(cwd, ".proctor"))
}

// HistoryDBPath returns the default path of the run-history database,
// $PROCTOR_HOME/history.db.
func HistoryDBPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// findWorkspaceRoot walks up from the working directory looking for an
// evaluation workspace: a .proctor-root marker file or an evals directory.
func findWorkspaceRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, ".proctor-root")); err == nil {
			return current, nil
		}
		if info, err := os.Stat(filepath.Join(current, "evals")); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("evaluation workspace root not found (looking for .proctor-root or an evals directory)")
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create proctor home directory: %w", err)
	}
	return dir, nil
}
