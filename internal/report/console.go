// Package report renders result documents and comparison reports for the
// terminal and for file output. Pure presentation; nothing here mutates the
// documents it is handed.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/proctor/internal/models"
)

// Verify renders the check-results and score sections printed after a run.
func Verify(doc *models.ResultDocument, colorOutput bool) []string {
	lines := []string{"=== Check Results ==="}

	for i := range doc.Checks {
		check := &doc.Checks[i]
		label := check.Description
		if label == "" {
			label = check.Check
		}
		row := glyph(check.Passed) + " " + label
		if colorOutput {
			row = paint(check.Passed, row)
		}
		lines = append(lines, row)

		if check.Error != "" {
			lines = append(lines, "  Error: "+check.Error)
		}
		if len(check.Missing) > 0 {
			lines = append(lines, "  Missing patterns: "+strings.Join(check.Missing, ", "))
		}
		if check.Skipped {
			lines = append(lines, "  Skipped: "+check.Reason)
		}
	}

	lines = append(lines, "", "=== Score ===")
	for _, category := range sortedCategories(doc.Score.Categories) {
		data := doc.Score.Categories[category]
		row := fmt.Sprintf("%s %s: %d/%d", glyph(data.Passed), category, data.Points, data.MaxPoints)
		if colorOutput {
			row = paint(data.Passed, row)
		}
		lines = append(lines, row)
	}

	lines = append(lines, "", fmt.Sprintf("Total: %d/%d (%.1f%%)",
		doc.Score.Total, doc.Score.MaxTotal, doc.Score.Percentage))

	if doc.Timing.DurationSeconds > 0 {
		minutes, seconds := doc.Timing.DurationSeconds/60, doc.Timing.DurationSeconds%60
		if minutes > 0 {
			lines = append(lines, fmt.Sprintf("Duration: %dm %ds", minutes, seconds))
		} else {
			lines = append(lines, fmt.Sprintf("Duration: %ds", seconds))
		}
	}

	return lines
}

// Comparison renders the full comparison report block for the terminal.
func Comparison(r *models.ComparisonReport, colorOutput bool) []string {
	bar := strings.Repeat("=", 60)
	rule := strings.Repeat("-", 40)

	lines := []string{
		bar,
		"EVALUATION COMPARISON: " + r.Scenario,
		bar,
		"",
		"OVERALL SCORES",
		rule,
		fmt.Sprintf("%-25s %10s %10s %10s", "Metric", "Baseline", "Plugin", "Delta"),
		rule,
		fmt.Sprintf("%-25s %10d %10d %+10d", "Total Points",
			r.Summary.BaselineTotal, r.Summary.PluginTotal, r.Summary.Delta),
		fmt.Sprintf("%-25s %9.1f%% %9.1f%% %+9.1f%%", "Percentage",
			r.Summary.BaselinePct, r.Summary.PluginPct, r.Summary.PercentageDelta),
		"",
	}

	if len(r.Improvements) > 0 {
		lines = append(lines, "✓ IMPROVEMENTS (Plugin passed where baseline failed)", rule)
		for _, item := range r.Improvements {
			row := fmt.Sprintf("  • %s: %d → %d (+%d)", item.Category, item.Baseline, item.WithPlugin, item.Delta)
			if colorOutput {
				row = color.GreenString(row)
			}
			lines = append(lines, row)
		}
		lines = append(lines, "")
	}

	if len(r.Regressions) > 0 {
		lines = append(lines, "✗ REGRESSIONS (Baseline passed where plugin failed)", rule)
		for _, item := range r.Regressions {
			row := fmt.Sprintf("  • %s: %d → %d (%d)", item.Category, item.Baseline, item.WithPlugin, item.Delta)
			if colorOutput {
				row = color.RedString(row)
			}
			lines = append(lines, row)
		}
		lines = append(lines, "")
	}

	if len(r.Unchanged) > 0 {
		lines = append(lines, "= UNCHANGED", rule)
		for _, item := range r.Unchanged {
			lines = append(lines, unchangedRow(item, colorOutput))
		}
		lines = append(lines, "")
	}

	verdict := "VERDICT: " + VerdictSentence(r.Summary)
	if colorOutput {
		switch r.Summary.Verdict {
		case models.VerdictImproved:
			verdict = color.GreenString(verdict)
		case models.VerdictReduced:
			verdict = color.RedString(verdict)
		}
	}

	return append(lines, bar, verdict, bar)
}

// VerdictSentence phrases the overall outcome of a comparison.
func VerdictSentence(s models.ComparisonSummary) string {
	switch {
	case s.Delta > 0:
		return fmt.Sprintf("Plugin IMPROVED score by %d points (%+.1f%%)", s.Delta, s.PercentageDelta)
	case s.Delta < 0:
		return fmt.Sprintf("Plugin REDUCED score by %d points (%.1f%%)", -s.Delta, s.PercentageDelta)
	default:
		return "No change in score"
	}
}

func unchangedRow(item models.UnchangedCategory, colorOutput bool) string {
	if item.Status == "skipped" {
		reason := item.Reason
		if reason == "" {
			reason = "unknown reason"
		}
		row := fmt.Sprintf("  ⊘ %s: skipped (%s)", item.Category, reason)
		if colorOutput {
			row = color.YellowString(row)
		}
		return row
	}

	mark := "✗"
	if item.Status == "passed" {
		mark = "✓"
	}
	row := fmt.Sprintf("  %s %s: %s", mark, item.Category, item.Status)
	if colorOutput {
		if item.Status == "passed" {
			row = color.GreenString(row)
		} else {
			row = color.RedString(row)
		}
	}
	return row
}

func glyph(v models.Verdict) string {
	switch v {
	case models.VerdictPassed:
		return "✓"
	case models.VerdictSkipped:
		return "⊘"
	default:
		return "✗"
	}
}

func paint(v models.Verdict, s string) string {
	switch v {
	case models.VerdictPassed:
		return color.GreenString(s)
	case models.VerdictSkipped:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func sortedCategories(categories map[string]models.CategoryScore) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
