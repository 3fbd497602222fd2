package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Freeplay holds the remote platform connection settings. They are read from
// the process environment exactly once, in Load, and passed into components
// at construction rather than consulted ambiently.
type Freeplay struct {
	// BaseURL is the platform API root
	BaseURL string `env:"FREEPLAY_BASE_URL" envDefault:"https://api.freeplay.ai"`

	// APIKey is the bearer credential; empty means API checks are skipped
	APIKey string `env:"FREEPLAY_API_KEY"`

	// ProjectID scopes every API request; empty means API checks are skipped
	ProjectID string `env:"FREEPLAY_PROJECT_ID"`

	// VerifySSL keeps TLS verification on unless set to "false"
	VerifySSL string `env:"FREEPLAY_VERIFY_SSL" envDefault:"true"`
}

// HasCredentials reports whether API verification checks can run at all.
func (f Freeplay) HasCredentials() bool {
	return f.APIKey != "" && f.ProjectID != ""
}

// SkipTLSVerify reports whether certificate verification is disabled,
// matching the platform convention that only the literal string "false"
// (any case) relaxes it.
func (f Freeplay) SkipTLSVerify() bool {
	return strings.EqualFold(f.VerifySSL, "false")
}

// Eval holds the evaluation time-window settings supplied by the caller that
// drove the run (start/end instants and duration are pass-through values).
type Eval struct {
	// StartTime is the window boundary as "YYYY-MM-DD HH:MM:SS" in UTC;
	// empty means "now minus five minutes" at run time
	StartTime string `env:"EVAL_START_TIME"`

	// EndTime is recorded in the result document, never interpreted
	EndTime string `env:"EVAL_END_TIME"`

	// DurationSecs is recorded in the result document, never interpreted
	DurationSecs int `env:"EVAL_DURATION_SECS" envDefault:"0"`
}

// Harness holds local harness options, loaded from an optional YAML file and
// overridable by CLI flags.
type Harness struct {
	// ScenariosDir is where bare scenario names are resolved
	ScenariosDir string `yaml:"scenarios_dir"`

	// ResultsDir is the default output directory for result documents
	ResultsDir string `yaml:"results_dir"`

	// HistoryDB overrides the run-history SQLite path; empty means the
	// default location under the proctor home directory
	HistoryDB string `yaml:"history_db"`

	// CheckTimeout is the default wall-clock bound for code_runs checks
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// LogLevel sets console verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// Config is the complete harness configuration.
type Config struct {
	Freeplay Freeplay
	Eval     Eval
	Harness  Harness
}

// DefaultHarness returns harness options with sensible defaults.
func DefaultHarness() Harness {
	return Harness{
		ScenariosDir: "evals/scenarios",
		ResultsDir:   "evals/results",
		CheckTimeout: 60 * time.Second,
		LogLevel:     "info",
	}
}

// Load builds the full configuration: environment variables for the platform
// and evaluation window, plus harness options from the given YAML file when
// it exists. A missing options file is not an error.
func Load(optionsPath string) (*Config, error) {
	cfg := &Config{Harness: DefaultHarness()}

	if err := env.Parse(&cfg.Freeplay); err != nil {
		return nil, fmt.Errorf("parse platform environment: %w", err)
	}
	if err := env.Parse(&cfg.Eval); err != nil {
		return nil, fmt.Errorf("parse evaluation environment: %w", err)
	}

	if optionsPath != "" {
		if err := cfg.Harness.mergeFile(optionsPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays non-zero values from a YAML options file.
func (h *Harness) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read options file: %w", err)
	}

	type yamlHarness struct {
		ScenariosDir string `yaml:"scenarios_dir"`
		ResultsDir   string `yaml:"results_dir"`
		HistoryDB    string `yaml:"history_db"`
		CheckTimeout string `yaml:"check_timeout"`
		LogLevel     string `yaml:"log_level"`
	}
	var raw yamlHarness
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse options file %s: %w", path, err)
	}

	if raw.ScenariosDir != "" {
		h.ScenariosDir = raw.ScenariosDir
	}
	if raw.ResultsDir != "" {
		h.ResultsDir = raw.ResultsDir
	}
	if raw.HistoryDB != "" {
		h.HistoryDB = raw.HistoryDB
	}
	if raw.CheckTimeout != "" {
		timeout, err := time.ParseDuration(raw.CheckTimeout)
		if err != nil {
			return fmt.Errorf("invalid check_timeout %q: %w", raw.CheckTimeout, err)
		}
		h.CheckTimeout = timeout
	}
	if raw.LogLevel != "" {
		h.LogLevel = raw.LogLevel
	}
	return nil
}

// MergeFlags overlays CLI flag values. Non-nil pointers take precedence over
// both defaults and the options file.
func (h *Harness) MergeFlags(scenariosDir, resultsDir, historyDB *string, checkTimeout *time.Duration, logLevel *string) {
	if scenariosDir != nil {
		h.ScenariosDir = *scenariosDir
	}
	if resultsDir != nil {
		h.ResultsDir = *resultsDir
	}
	if historyDB != nil {
		h.HistoryDB = *historyDB
	}
	if checkTimeout != nil {
		h.CheckTimeout = *checkTimeout
	}
	if logLevel != nil {
		h.LogLevel = *logLevel
	}
}

// Validate checks configuration values that must hold before any check runs.
func (c *Config) Validate() error {
	if c.Freeplay.BaseURL == "" {
		return fmt.Errorf("platform base URL cannot be empty")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Harness.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.Harness.LogLevel)
	}

	if c.Harness.CheckTimeout < 0 {
		return fmt.Errorf("check_timeout must be >= 0, got %v", c.Harness.CheckTimeout)
	}

	if c.Eval.DurationSecs < 0 {
		return fmt.Errorf("EVAL_DURATION_SECS must be >= 0, got %d", c.Eval.DurationSecs)
	}

	return nil
}
