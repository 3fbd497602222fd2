package models

import (
	"errors"
	"fmt"
)

// Check kind constants for SuccessCriterion.Type
const (
	CheckFileContains = "file_contains"
	CheckCodeRuns     = "code_runs"
	CheckAPIVerify    = "api_verify"
)

// API verification method constants for SuccessCriterion.Method
const (
	MethodSearchCompletions        = "search_completions"
	MethodCheckPromptExists        = "check_prompt_exists"
	MethodCheckCompletionHasPrompt = "check_completion_has_prompt"
	MethodCheckPromptHasVariable   = "check_prompt_has_variable"
	MethodCheckDatasetExists       = "check_dataset_exists"
	MethodCheckDatasetHasTestCases = "check_dataset_has_test_cases"
	MethodCheckTestRunExists       = "check_test_run_exists"
	MethodCheckTestRunHasSessions  = "check_test_run_has_sessions"
)

// Scenario is a named evaluation definition: an ordered list of success
// criteria plus the scoring rubric that converts their outcomes into points.
// Immutable once loaded.
type Scenario struct {
	Name            string                 `json:"name" yaml:"name"`
	Description     string                 `json:"description,omitempty" yaml:"description,omitempty"`
	SuccessCriteria []SuccessCriterion     `json:"success_criteria" yaml:"success_criteria"`
	Scoring         map[string]RubricEntry `json:"scoring" yaml:"scoring"`
}

// SuccessCriterion is one declared check. Type selects the variant; only the
// fields for that variant are meaningful.
type SuccessCriterion struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// file_contains
	File     string   `json:"file,omitempty" yaml:"file,omitempty"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`

	// code_runs
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	Timeout int    `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds, 0 means default

	// api_verify
	Method       string `json:"method,omitempty" yaml:"method,omitempty"`
	PromptName   string `json:"prompt_name,omitempty" yaml:"prompt_name,omitempty"`
	VariableName string `json:"variable_name,omitempty" yaml:"variable_name,omitempty"`
	DatasetName  string `json:"dataset_name,omitempty" yaml:"dataset_name,omitempty"`
	MinTestCases int    `json:"min_test_cases,omitempty" yaml:"min_test_cases,omitempty"`
	MinSessions  int    `json:"min_sessions,omitempty" yaml:"min_sessions,omitempty"`
}

// RubricEntry is the point value of one scoring category.
type RubricEntry struct {
	Points int `json:"points" yaml:"points"`
}

// Validate checks structural requirements of a loaded scenario.
// Unknown criterion types and methods are tolerated here; they surface as
// per-check error outcomes at run time rather than blocking the whole run.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name is required")
	}
	if len(s.SuccessCriteria) == 0 {
		return errors.New("scenario must declare at least one success criterion")
	}
	for i := range s.SuccessCriteria {
		if err := s.SuccessCriteria[i].Validate(); err != nil {
			return fmt.Errorf("criterion %d: %w", i+1, err)
		}
	}
	for category, entry := range s.Scoring {
		if entry.Points < 0 {
			return fmt.Errorf("scoring category %q: points must be >= 0", category)
		}
	}
	return nil
}

// Validate checks the variant-specific required fields of a criterion.
func (c *SuccessCriterion) Validate() error {
	switch c.Type {
	case "":
		return errors.New("criterion type is required")
	case CheckFileContains:
		if c.File == "" {
			return errors.New("file_contains criterion requires a file")
		}
		if len(c.Patterns) == 0 {
			return errors.New("file_contains criterion requires at least one pattern")
		}
	case CheckCodeRuns:
		if c.Command == "" {
			return errors.New("code_runs criterion requires a command")
		}
		if c.Timeout < 0 {
			return errors.New("code_runs timeout must be >= 0")
		}
	case CheckAPIVerify:
		if c.Method == "" {
			return errors.New("api_verify criterion requires a method")
		}
		switch c.Method {
		case MethodCheckPromptExists:
			if c.PromptName == "" {
				return fmt.Errorf("%s requires prompt_name", c.Method)
			}
		case MethodCheckPromptHasVariable:
			if c.PromptName == "" {
				return fmt.Errorf("%s requires prompt_name", c.Method)
			}
			if c.VariableName == "" {
				return fmt.Errorf("%s requires variable_name", c.Method)
			}
		case MethodCheckDatasetExists:
			if c.DatasetName == "" {
				return fmt.Errorf("%s requires dataset_name", c.Method)
			}
		}
		if c.MinTestCases < 0 || c.MinSessions < 0 {
			return errors.New("api_verify minimum counts must be >= 0")
		}
	}
	return nil
}
