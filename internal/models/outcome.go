package models

import (
	"bytes"
	"fmt"
)

// Verdict is the three-valued result of a check: failed, passed, or skipped.
// It marshals to JSON as false, true, or null, so a skipped check is never
// mistaken for a failed one in persisted result documents.
type Verdict int

const (
	VerdictFailed Verdict = iota
	VerdictPassed
	VerdictSkipped
)

// String returns the lowercase name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "passed"
	case VerdictSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// MarshalJSON encodes the verdict as true, false, or null.
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case VerdictPassed:
		return []byte("true"), nil
	case VerdictSkipped:
		return []byte("null"), nil
	default:
		return []byte("false"), nil
	}
}

// UnmarshalJSON decodes true, false, or null into a verdict.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*v = VerdictPassed
	case "false":
		*v = VerdictFailed
	case "null":
		*v = VerdictSkipped
	default:
		return fmt.Errorf("invalid verdict %q: want true, false, or null", data)
	}
	return nil
}

// CheckOutcome is the uniform result of executing one success criterion.
// Check identifies the kind, Method the api_verify variant. Only the detail
// fields for the producing executor are populated.
type CheckOutcome struct {
	Check       string  `json:"check"`
	Method      string  `json:"method,omitempty"`
	Description string  `json:"description,omitempty"`
	Passed      Verdict `json:"passed"`
	Skipped     bool    `json:"skipped,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Error       string  `json:"error,omitempty"`
	Warning     string  `json:"warning,omitempty"`

	// file_contains detail
	File     string   `json:"file,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
	Found    []string `json:"found,omitempty"`
	Missing  []string `json:"missing,omitempty"`

	// code_runs detail
	Command    string `json:"command,omitempty"`
	ReturnCode *int   `json:"return_code,omitempty"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`

	// api_verify detail
	APIReachable    *bool  `json:"api_reachable,omitempty"`
	StatusCode      int    `json:"status_code,omitempty"`
	CompletionCount *int   `json:"completion_count,omitempty"`
	TotalReturned   *int   `json:"total_returned,omitempty"`
	Since           string `json:"since,omitempty"`
	PromptName      string `json:"prompt_name,omitempty"`
	// PromptTemplate carries whatever value the platform attached, which may
	// be a name string or a structured reference.
	PromptTemplate interface{} `json:"prompt_template,omitempty"`
	TemplateCount  *int        `json:"template_count,omitempty"`
	VariableName   string      `json:"variable_name,omitempty"`
	DatasetName    string      `json:"dataset_name,omitempty"`
	TestCaseCount  *int        `json:"test_case_count,omitempty"`
	TestRunCount   *int        `json:"test_run_count,omitempty"`
	SessionCount   *int        `json:"session_count,omitempty"`
}

// Satisfied reports whether the outcome counts toward a clean run exit:
// the check either passed or was skipped.
func (o *CheckOutcome) Satisfied() bool {
	return o.Passed == VerdictPassed || o.Skipped || o.Passed == VerdictSkipped
}
