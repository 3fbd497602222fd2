package report

import (
	"fmt"
	"strings"

	"github.com/harrison/proctor/internal/models"
)

// Markdown renders a comparison report as a Markdown document with one table
// per section.
func Markdown(r *models.ComparisonReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Evaluation comparison: %s\n\n", r.Scenario)
	fmt.Fprintf(&sb, "Baseline run at %s, with-plugin run at %s.\n\n",
		r.Baseline.Timestamp, r.WithPlugin.Timestamp)

	sb.WriteString("| Metric | Baseline | Plugin | Delta |\n")
	sb.WriteString("| --- | ---: | ---: | ---: |\n")
	fmt.Fprintf(&sb, "| Total points | %d | %d | %+d |\n",
		r.Summary.BaselineTotal, r.Summary.PluginTotal, r.Summary.Delta)
	fmt.Fprintf(&sb, "| Percentage | %.1f%% | %.1f%% | %+.1f%% |\n\n",
		r.Summary.BaselinePct, r.Summary.PluginPct, r.Summary.PercentageDelta)

	writeDeltaSection(&sb, "Improvements", r.Improvements)
	writeDeltaSection(&sb, "Regressions", r.Regressions)

	if len(r.Unchanged) > 0 {
		sb.WriteString("## Unchanged\n\n")
		sb.WriteString("| Category | Status | Detail |\n")
		sb.WriteString("| --- | --- | --- |\n")
		for _, item := range r.Unchanged {
			detail := ""
			if item.Status == "skipped" {
				detail = item.Reason
			} else if item.Points != nil {
				detail = fmt.Sprintf("%d points", *item.Points)
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", item.Category, item.Status, detail)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "**Verdict:** %s\n", VerdictSentence(r.Summary))
	return sb.String()
}

func writeDeltaSection(sb *strings.Builder, title string, items []models.CategoryDelta) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	sb.WriteString("| Category | Baseline | With plugin | Delta |\n")
	sb.WriteString("| --- | ---: | ---: | ---: |\n")
	for _, item := range items {
		fmt.Fprintf(sb, "| %s | %d | %d | %+d |\n", item.Category, item.Baseline, item.WithPlugin, item.Delta)
	}
	sb.WriteString("\n")
}
