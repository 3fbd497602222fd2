package models

// Comparison verdict constants, a sign test on the total point delta.
const (
	VerdictImproved  = "improved"
	VerdictReduced   = "reduced"
	VerdictUnchanged = "unchanged"
)

// SideSummary identifies one side of a comparison.
type SideSummary struct {
	Mode      string      `json:"mode"`
	Timestamp string      `json:"timestamp"`
	Score     ScoreResult `json:"score"`
}

// CategoryDelta records a category whose pass state flipped between runs.
// Baseline and WithPlugin are the points each side earned.
type CategoryDelta struct {
	Category   string `json:"category"`
	Baseline   int    `json:"baseline"`
	WithPlugin int    `json:"with_plugin"`
	Delta      int    `json:"delta"`
}

// UnchangedCategory records a category with the same outcome on both sides.
// Skipped entries carry a reason instead of points.
type UnchangedCategory struct {
	Category string `json:"category"`
	Status   string `json:"status"` // passed, failed, or skipped
	Reason   string `json:"reason,omitempty"`
	Points   *int   `json:"points,omitempty"`
}

// ComparisonSummary reports per-side totals and their deltas.
type ComparisonSummary struct {
	BaselineTotal   int     `json:"baseline_total"`
	PluginTotal     int     `json:"plugin_total"`
	Delta           int     `json:"delta"`
	BaselinePct     float64 `json:"baseline_percentage"`
	PluginPct       float64 `json:"plugin_percentage"`
	PercentageDelta float64 `json:"percentage_delta"`
	Verdict         string  `json:"verdict"`
}

// ComparisonReport is the categorized diff of two result documents for the
// same scenario. Purely derived; carries no lifecycle of its own.
type ComparisonReport struct {
	Scenario     string              `json:"scenario"`
	Baseline     SideSummary         `json:"baseline"`
	WithPlugin   SideSummary         `json:"with_plugin"`
	Improvements []CategoryDelta     `json:"improvements"`
	Regressions  []CategoryDelta     `json:"regressions"`
	Unchanged    []UnchangedCategory `json:"unchanged"`
	Summary      ComparisonSummary   `json:"summary"`
}
