package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/proctor/internal/models"
)

// outputLimit caps the stdout/stderr captured onto an outcome.
const outputLimit = 2000

// errorIndicators veto an exit status of zero. Some project code traps and
// logs its own exceptions while still exiting clean; the traces it leaves on
// stderr are the only signal. Accepted policy, false positives included.
var errorIndicators = [...]string{"error", "exception", "traceback", "failed"}

// CodeRunner executes one project command and classifies the result.
type CodeRunner struct {
	// DefaultTimeout bounds the command when the criterion sets none.
	DefaultTimeout time.Duration

	// InstallTimeout bounds the best-effort dependency install.
	InstallTimeout time.Duration

	// Python is the interpreter used to install requirements.txt.
	Python string
}

// NewCodeRunner returns a runner with the standard bounds.
func NewCodeRunner() *CodeRunner {
	return &CodeRunner{
		DefaultTimeout: 60 * time.Second,
		InstallTimeout: 120 * time.Second,
		Python:         "python3",
	}
}

// Check runs the command inside projectDir and reports whether it completed
// cleanly: exit status zero and no error indicator on stderr. timeoutSecs of
// zero applies the default bound.
func (r *CodeRunner) Check(ctx context.Context, projectDir, command string, timeoutSecs int) *models.CheckOutcome {
	out := &models.CheckOutcome{
		Check:   models.CheckCodeRuns,
		Command: command,
	}

	timeout := r.DefaultTimeout
	if timeoutSecs > 0 {
		timeout = time.Duration(timeoutSecs) * time.Second
	}

	argv := strings.Fields(command)
	if len(argv) == 0 {
		out.Error = "empty command"
		return out
	}

	r.installRequirements(ctx, projectDir)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = projectDir
	cmd.Env = append(os.Environ(), "PYTHONPATH="+projectDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		out.Error = fmt.Sprintf("Command timed out after %ds", int(timeout.Seconds()))
		return out
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code := 0
		out.ReturnCode = &code
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		out.ReturnCode = &code
	default:
		// The process never started (missing executable, bad directory).
		out.Error = err.Error()
		return out
	}

	out.Stdout = truncate(stdout.String())
	out.Stderr = truncate(stderr.String())

	// The indicator scan sees the full stream, not the truncated capture.
	indicator := hasErrorIndicator(stderr.String())
	if *out.ReturnCode == 0 {
		if indicator {
			out.Warning = "Exit code 0 but stderr contains error indicators"
		} else {
			out.Passed = models.VerdictPassed
		}
	}
	return out
}

// installRequirements installs the project's requirements.txt when present.
// Best-effort only: the command run that follows reports the real state.
func (r *CodeRunner) installRequirements(ctx context.Context, projectDir string) {
	reqPath := filepath.Join(projectDir, "requirements.txt")
	if _, err := os.Stat(reqPath); err != nil {
		return
	}

	installCtx, cancel := context.WithTimeout(ctx, r.InstallTimeout)
	defer cancel()

	cmd := exec.CommandContext(installCtx, r.Python, "-m", "pip", "install", "-q", "-r", reqPath)
	cmd.Dir = projectDir
	_ = cmd.Run()
}

func hasErrorIndicator(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, indicator := range errorIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= outputLimit {
		return s
	}
	return string(runes[:outputLimit])
}
