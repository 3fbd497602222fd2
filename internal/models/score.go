package models

// CategoryScore is the scored result of one rubric category.
type CategoryScore struct {
	Passed    Verdict `json:"passed"`
	Skipped   bool    `json:"skipped,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Points    int     `json:"points"`
	MaxPoints int     `json:"max_points"`
}

// ScoreResult aggregates category scores into totals. Percentage is
// round(total/max_total*100, 1) when max_total > 0, else 0.
type ScoreResult struct {
	Categories map[string]CategoryScore `json:"categories"`
	Total      int                      `json:"total"`
	MaxTotal   int                      `json:"max_total"`
	Percentage float64                  `json:"percentage"`
}
