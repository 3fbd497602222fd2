package checks

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/proctor/internal/models"
)

// FileContains checks that a project file mentions every expected pattern,
// case-insensitively. An absent file is an unmet criterion, not a fault: the
// outcome fails with a note saying which file was expected.
func FileContains(projectDir, fileName string, patterns []string) *models.CheckOutcome {
	out := &models.CheckOutcome{
		Check:    models.CheckFileContains,
		File:     fileName,
		Patterns: patterns,
	}

	data, err := os.ReadFile(filepath.Join(projectDir, fileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			out.Error = "File not found: " + fileName
		} else {
			out.Error = err.Error()
		}
		return out
	}

	content := strings.ToLower(string(data))
	for _, pattern := range patterns {
		if strings.Contains(content, strings.ToLower(pattern)) {
			out.Found = append(out.Found, pattern)
		} else {
			out.Missing = append(out.Missing, pattern)
		}
	}

	if len(out.Missing) == 0 {
		out.Passed = models.VerdictPassed
	}
	return out
}
