// Package compare diffs two result documents produced by verify runs of the
// same scenario, typically one baseline run and one with-plugin run.
package compare

import (
	"sort"

	"github.com/harrison/proctor/internal/models"
)

// Compare builds the categorized diff of two result documents. Categories are
// visited in sorted name order, so comparing the same pair of documents twice
// yields byte-identical reports.
//
// A category skipped on either side never counts as an improvement or a
// regression. Both sides skipped reports as unchanged with the with-plugin
// reason; only a strict failed-to-passed flip is an improvement, and only a
// strict passed-to-failed flip is a regression.
func Compare(baseline, withPlugin *models.ResultDocument) *models.ComparisonReport {
	report := &models.ComparisonReport{
		Scenario: baseline.Scenario,
		Baseline: models.SideSummary{
			Mode:      baseline.Mode,
			Timestamp: baseline.Timestamp,
			Score:     baseline.Score,
		},
		WithPlugin: models.SideSummary{
			Mode:      withPlugin.Mode,
			Timestamp: withPlugin.Timestamp,
			Score:     withPlugin.Score,
		},
		Improvements: []models.CategoryDelta{},
		Regressions:  []models.CategoryDelta{},
		Unchanged:    []models.UnchangedCategory{},
	}

	for _, category := range unionCategories(baseline.Score.Categories, withPlugin.Score.Categories) {
		// Absent categories read as failed with zero points.
		base := baseline.Score.Categories[category]
		plugin := withPlugin.Score.Categories[category]

		switch {
		case base.Skipped && plugin.Skipped:
			report.Unchanged = append(report.Unchanged, models.UnchangedCategory{
				Category: category,
				Status:   "skipped",
				Reason:   plugin.Reason,
			})
		case base.Passed == models.VerdictFailed && plugin.Passed == models.VerdictPassed:
			report.Improvements = append(report.Improvements, pointDelta(category, base, plugin))
		case base.Passed == models.VerdictPassed && plugin.Passed == models.VerdictFailed:
			report.Regressions = append(report.Regressions, pointDelta(category, base, plugin))
		default:
			report.Unchanged = append(report.Unchanged, unchangedEntry(category, base))
		}
	}

	report.Summary = summarize(baseline.Score, withPlugin.Score)
	return report
}

func unionCategories(base, plugin map[string]models.CategoryScore) []string {
	seen := make(map[string]struct{}, len(base)+len(plugin))
	for name := range base {
		seen[name] = struct{}{}
	}
	for name := range plugin {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pointDelta(category string, base, plugin models.CategoryScore) models.CategoryDelta {
	return models.CategoryDelta{
		Category:   category,
		Baseline:   base.Points,
		WithPlugin: plugin.Points,
		Delta:      plugin.Points - base.Points,
	}
}

// unchangedEntry reports the baseline's status and points for a category that
// moved in neither direction, including mixed cases where exactly one side
// was skipped.
func unchangedEntry(category string, base models.CategoryScore) models.UnchangedCategory {
	entry := models.UnchangedCategory{Category: category, Status: statusText(base.Passed)}
	if entry.Status == "skipped" {
		entry.Reason = base.Reason
		return entry
	}
	points := base.Points
	entry.Points = &points
	return entry
}

func statusText(v models.Verdict) string {
	switch v {
	case models.VerdictPassed:
		return "passed"
	case models.VerdictSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

func summarize(base, plugin models.ScoreResult) models.ComparisonSummary {
	summary := models.ComparisonSummary{
		BaselineTotal:   base.Total,
		PluginTotal:     plugin.Total,
		Delta:           plugin.Total - base.Total,
		BaselinePct:     base.Percentage,
		PluginPct:       plugin.Percentage,
		PercentageDelta: plugin.Percentage - base.Percentage,
	}
	switch {
	case summary.Delta > 0:
		summary.Verdict = models.VerdictImproved
	case summary.Delta < 0:
		summary.Verdict = models.VerdictReduced
	default:
		summary.Verdict = models.VerdictUnchanged
	}
	return summary
}
