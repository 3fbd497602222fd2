package freeplay

// Completion records are untyped: the platform has no canonical completion
// schema, and the window package scans raw fields defensively.
type Completion = map[string]interface{}

// CompletionSearch is the result of a completion search: the raw records
// plus the HTTP status the platform answered with.
type CompletionSearch struct {
	StatusCode  int
	Completions []Completion
}

// SearchFilter is the server-side filter sent with a completion search.
// Server-side filtering is best effort only; callers re-filter client-side.
type SearchFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// PromptTemplate is one entry of the project's template list.
type PromptTemplate struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	LatestVersionID string `json:"latest_version_id"`
}

// TemplateMessage is one message of a prompt template version.
type TemplateMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TemplateVersion is the message content of one prompt template version.
type TemplateVersion struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Messages []TemplateMessage `json:"messages"`
}

// Dataset is one entry of the project's dataset list.
type Dataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TestCase is one test case of a dataset.
type TestCase struct {
	ID     string                 `json:"id"`
	Values map[string]interface{} `json:"values,omitempty"`
}

// TestRun is one entry of the project's test-run list. CreatedAt is epoch
// seconds; the platform emits it as a number, not text.
type TestRun struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt float64 `json:"created_at"`
}

// TestRunDetail is the detail record of a single test run.
type TestRunDetail struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SessionCount int    `json:"session_count"`
}
