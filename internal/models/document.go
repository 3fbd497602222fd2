package models

// Run mode constants. Mode is the join key when comparing two runs of the
// same scenario.
const (
	ModeBaseline   = "baseline"
	ModeWithPlugin = "with-plugin"
)

// Timing carries pass-through run timing sourced from the environment.
type Timing struct {
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// ResultDocument is the artifact of one scenario run: every check outcome in
// declared order plus the computed score. Written once, read-only afterward.
type ResultDocument struct {
	Scenario   string         `json:"scenario"`
	RunID      string         `json:"run_id,omitempty"`
	Mode       string         `json:"mode"`
	Timestamp  string         `json:"timestamp"`
	ProjectDir string         `json:"project_dir"`
	Timing     Timing         `json:"timing"`
	Checks     []CheckOutcome `json:"checks"`
	Score      ScoreResult    `json:"score"`
}

// AllSatisfied reports whether every check either passed or was skipped.
// This drives the verify command's exit status.
func (d *ResultDocument) AllSatisfied() bool {
	for i := range d.Checks {
		if !d.Checks[i].Satisfied() {
			return false
		}
	}
	return true
}
