package report

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/harrison/proctor/internal/models"
)

func intPtr(n int) *int { return &n }

func sampleComparison() *models.ComparisonReport {
	return &models.ComparisonReport{
		Scenario: "integration-with-prompt",
		Baseline: models.SideSummary{
			Mode:      models.ModeBaseline,
			Timestamp: "2024-01-15T10:35:00.123456Z",
			Score:     models.ScoreResult{Total: 30, MaxTotal: 80, Percentage: 37.5},
		},
		WithPlugin: models.SideSummary{
			Mode:      models.ModeWithPlugin,
			Timestamp: "2024-01-15T11:05:00.654321Z",
			Score:     models.ScoreResult{Total: 50, MaxTotal: 80, Percentage: 62.5},
		},
		Improvements: []models.CategoryDelta{
			{Category: "code_modified", Baseline: 0, WithPlugin: 30, Delta: 30},
		},
		Regressions: []models.CategoryDelta{
			{Category: "code_runs", Baseline: 10, WithPlugin: 0, Delta: -10},
		},
		Unchanged: []models.UnchangedCategory{
			{Category: "completion_logged", Status: "skipped", Reason: "no credentials configured for this run"},
			{Category: "prompt_created", Status: "passed", Points: intPtr(20)},
		},
		Summary: models.ComparisonSummary{
			BaselineTotal: 30, PluginTotal: 50, Delta: 20,
			BaselinePct: 37.5, PluginPct: 62.5, PercentageDelta: 25,
			Verdict: models.VerdictImproved,
		},
	}
}

func TestVerify_RendersChecksAndScore(t *testing.T) {
	doc := &models.ResultDocument{
		Scenario: "integration-with-prompt",
		Checks: []models.CheckOutcome{
			{Check: models.CheckFileContains, Passed: models.VerdictPassed, Description: "Code mentions the model"},
			{Check: models.CheckCodeRuns, Passed: models.VerdictFailed, Error: "Command timed out after 60s"},
			{
				Check: models.CheckAPIVerify, Passed: models.VerdictSkipped, Skipped: true,
				Reason: "FREEPLAY_API_KEY or FREEPLAY_PROJECT_ID not set", Description: "Completion logged",
			},
			{
				Check: models.CheckFileContains, Passed: models.VerdictFailed,
				Description: "Files reference the client", Missing: []string{"gpt-4o-mini", "freeplay"},
			},
		},
		Score: models.ScoreResult{
			Categories: map[string]models.CategoryScore{
				"code_modified":     {Passed: models.VerdictPassed, Points: 10, MaxPoints: 10},
				"code_runs":         {Passed: models.VerdictFailed, Points: 0, MaxPoints: 15},
				"completion_logged": {Passed: models.VerdictSkipped, Skipped: true, MaxPoints: 30},
			},
			Total: 10, MaxTotal: 55, Percentage: 18.2,
		},
		Timing: models.Timing{DurationSeconds: 300},
	}

	got := Verify(doc, false)

	want := []string{
		"=== Check Results ===",
		"✓ Code mentions the model",
		"✗ code_runs",
		"  Error: Command timed out after 60s",
		"⊘ Completion logged",
		"  Skipped: FREEPLAY_API_KEY or FREEPLAY_PROJECT_ID not set",
		"✗ Files reference the client",
		"  Missing patterns: gpt-4o-mini, freeplay",
		"",
		"=== Score ===",
		"✓ code_modified: 10/10",
		"✗ code_runs: 0/15",
		"⊘ completion_logged: 0/30",
		"",
		"Total: 10/55 (18.2%)",
		"Duration: 5m 0s",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Verify lines:\ngot  %q\nwant %q", got, want)
	}
}

func TestVerify_ShortDuration(t *testing.T) {
	doc := &models.ResultDocument{Timing: models.Timing{DurationSeconds: 45}}

	got := Verify(doc, false)

	if got[len(got)-1] != "Duration: 45s" {
		t.Errorf("last line = %q, want plain seconds", got[len(got)-1])
	}
}

func TestVerify_NoDurationLineWhenUntimed(t *testing.T) {
	doc := &models.ResultDocument{
		Score: models.ScoreResult{Percentage: 0},
	}

	got := Verify(doc, false)

	if got[len(got)-1] != "Total: 0/0 (0.0%)" {
		t.Errorf("last line = %q, want total with no duration after it", got[len(got)-1])
	}
}

func TestComparison_RendersAllSections(t *testing.T) {
	lines := Comparison(sampleComparison(), false)
	output := strings.Join(lines, "\n")

	for _, want := range []string{
		"EVALUATION COMPARISON: integration-with-prompt",
		"OVERALL SCORES",
		"Total Points",
		"+20",
		"✓ IMPROVEMENTS (Plugin passed where baseline failed)",
		"  • code_modified: 0 → 30 (+30)",
		"✗ REGRESSIONS (Baseline passed where plugin failed)",
		"  • code_runs: 10 → 0 (-10)",
		"= UNCHANGED",
		"  ⊘ completion_logged: skipped (no credentials configured for this run)",
		"  ✓ prompt_created: passed",
		"VERDICT: Plugin IMPROVED score by 20 points (+25.0%)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output:\n%s", want, output)
		}
	}

	if lines[0] != strings.Repeat("=", 60) {
		t.Errorf("first line = %q, want 60-char bar", lines[0])
	}
	if lines[len(lines)-1] != strings.Repeat("=", 60) {
		t.Errorf("last line = %q, want 60-char bar", lines[len(lines)-1])
	}
}

func TestComparison_OmitsEmptySections(t *testing.T) {
	r := sampleComparison()
	r.Improvements = nil
	r.Regressions = nil

	output := strings.Join(Comparison(r, false), "\n")

	if strings.Contains(output, "IMPROVEMENTS") || strings.Contains(output, "REGRESSIONS") {
		t.Errorf("empty sections rendered:\n%s", output)
	}
	if !strings.Contains(output, "= UNCHANGED") {
		t.Error("unchanged section missing")
	}
}

func TestComparison_SkipReasonFallback(t *testing.T) {
	r := sampleComparison()
	r.Unchanged = []models.UnchangedCategory{{Category: "completion_logged", Status: "skipped"}}

	output := strings.Join(Comparison(r, false), "\n")

	if !strings.Contains(output, "  ⊘ completion_logged: skipped (unknown reason)") {
		t.Errorf("missing fallback reason:\n%s", output)
	}
}

func TestVerdictSentence(t *testing.T) {
	cases := []struct {
		name    string
		summary models.ComparisonSummary
		want    string
	}{
		{"improved", models.ComparisonSummary{Delta: 20, PercentageDelta: 25}, "Plugin IMPROVED score by 20 points (+25.0%)"},
		{"reduced", models.ComparisonSummary{Delta: -20, PercentageDelta: -25}, "Plugin REDUCED score by 20 points (-25.0%)"},
		{"unchanged", models.ComparisonSummary{}, "No change in score"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VerdictSentence(tc.summary); got != tc.want {
				t.Errorf("VerdictSentence = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComparison_ColorsRowsWhenEnabled(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	output := strings.Join(Comparison(sampleComparison(), true), "\n")

	if !strings.Contains(output, "\x1b[32m") {
		t.Error("expected green ANSI code for improvement rows")
	}
	if !strings.Contains(output, "\x1b[31m") {
		t.Error("expected red ANSI code for regression rows")
	}
	if !strings.Contains(output, "\x1b[33m") {
		t.Error("expected yellow ANSI code for skipped rows")
	}
	if !strings.Contains(output, "\x1b[0m") {
		t.Error("expected ANSI reset code")
	}
}
