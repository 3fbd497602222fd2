// Package scoring folds check outcomes into a scenario's rubric.
package scoring

import (
	"math"

	"github.com/harrison/proctor/internal/models"
)

// checkKey identifies an outcome for category lookup: the check kind plus,
// for api_verify checks, the method name.
type checkKey struct {
	check  string
	method string
}

// checkCategories is the closed mapping from outcome identity to scoring
// category. Outcomes without an entry never score, whatever the rubric says.
var checkCategories = map[checkKey]string{
	{models.CheckFileContains, ""}: "code_modified",
	{models.CheckCodeRuns, ""}:     "code_runs",
	{models.CheckAPIVerify, models.MethodSearchCompletions}:        "completion_logged",
	{models.CheckAPIVerify, models.MethodCheckPromptExists}:        "prompt_created",
	{models.CheckAPIVerify, models.MethodCheckCompletionHasPrompt}: "completion_has_prompt",
	{models.CheckAPIVerify, models.MethodCheckPromptHasVariable}:   "prompt_has_variable",
	{models.CheckAPIVerify, models.MethodCheckDatasetExists}:       "dataset_created",
	{models.CheckAPIVerify, models.MethodCheckDatasetHasTestCases}: "dataset_has_test_cases",
	{models.CheckAPIVerify, models.MethodCheckTestRunExists}:       "test_run_created",
	{models.CheckAPIVerify, models.MethodCheckTestRunHasSessions}:  "test_run_has_sessions",
}

// Calculate scores the ordered outcomes against the rubric. Outcomes whose
// identity maps to no category, or whose category the rubric does not price,
// are silently excluded; they still appear in the raw check list. A later
// outcome for the same category overwrites an earlier one. Skips score zero
// points without counting as failures. No partial credit.
func Calculate(rubric map[string]models.RubricEntry, outcomes []*models.CheckOutcome) *models.ScoreResult {
	categories := make(map[string]models.CategoryScore)

	for _, out := range outcomes {
		method := ""
		if out.Check == models.CheckAPIVerify {
			method = out.Method
		}
		category, ok := checkCategories[checkKey{out.Check, method}]
		if !ok {
			continue
		}
		entry, ok := rubric[category]
		if !ok {
			continue
		}

		if out.Skipped {
			categories[category] = models.CategoryScore{
				Passed:    models.VerdictSkipped,
				Skipped:   true,
				Reason:    out.Reason,
				MaxPoints: entry.Points,
			}
			continue
		}

		points := 0
		if out.Passed == models.VerdictPassed {
			points = entry.Points
		}
		categories[category] = models.CategoryScore{
			Passed:    out.Passed,
			Points:    points,
			MaxPoints: entry.Points,
		}
	}

	total, maxTotal := 0, 0
	for _, score := range categories {
		total += score.Points
		maxTotal += score.MaxPoints
	}

	percentage := 0.0
	if maxTotal > 0 {
		percentage = math.Round(float64(total)/float64(maxTotal)*1000) / 10
	}

	return &models.ScoreResult{
		Categories: categories,
		Total:      total,
		MaxTotal:   maxTotal,
		Percentage: percentage,
	}
}
