// Package checks implements the three check executor families: file content
// inspection, bounded command execution, and remote platform verification.
// Every executor returns a well-formed CheckOutcome with passed=fail as the
// default; no fault aborts the surrounding scenario run.
package checks

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/harrison/proctor/internal/config"
	"github.com/harrison/proctor/internal/freeplay"
	"github.com/harrison/proctor/internal/models"
	"github.com/harrison/proctor/internal/window"
)

// SkipReason is recorded on every api_verify outcome when platform
// credentials are absent from the environment.
const SkipReason = "FREEPLAY_API_KEY or FREEPLAY_PROJECT_ID not set"

// APIChecker verifies that expected records exist on the platform. One
// checker serves a whole scenario run; it holds the run's time window so all
// window-scoped methods agree on the boundary.
type APIChecker struct {
	client   *freeplay.Client
	hasCreds bool
	window   window.Window
}

// NewAPIChecker builds a checker for one run. When cfg carries no
// credentials every Check call is skipped rather than attempted.
func NewAPIChecker(cfg config.Freeplay, w window.Window) *APIChecker {
	return &APIChecker{
		client:   freeplay.New(cfg),
		hasCreds: cfg.HasCredentials(),
		window:   w,
	}
}

// Check runs one api_verify criterion and returns its outcome. Unrecognized
// methods yield a failed outcome with no error note, matching the behavior
// of an exact condition that simply was not verified.
func (a *APIChecker) Check(ctx context.Context, criterion models.SuccessCriterion) *models.CheckOutcome {
	out := &models.CheckOutcome{
		Check:  models.CheckAPIVerify,
		Method: criterion.Method,
	}

	if !a.hasCreds {
		out.Passed = models.VerdictSkipped
		out.Skipped = true
		out.Reason = SkipReason
		return out
	}

	var err error
	switch criterion.Method {
	case models.MethodSearchCompletions:
		err = a.completionLogged(ctx, out)
	case models.MethodCheckPromptExists:
		err = a.promptExists(ctx, out, criterion.PromptName)
	case models.MethodCheckCompletionHasPrompt:
		err = a.completionHasPrompt(ctx, out)
	case models.MethodCheckPromptHasVariable:
		err = a.promptHasVariable(ctx, out, criterion.PromptName, criterion.VariableName)
	case models.MethodCheckDatasetExists:
		err = a.datasetExists(ctx, out, criterion.DatasetName)
	case models.MethodCheckDatasetHasTestCases:
		err = a.datasetHasTestCases(ctx, out, criterion.DatasetName, criterion.MinTestCases)
	case models.MethodCheckTestRunExists:
		err = a.testRunExists(ctx, out)
	case models.MethodCheckTestRunHasSessions:
		err = a.testRunHasSessions(ctx, out, criterion.MinSessions)
	}

	if err != nil {
		recordFault(out, err)
	}
	return out
}

// recordFault classifies a platform failure onto the outcome. A non-2xx
// response proves the API was reachable; a transport-level failure proves it
// was not; anything else (decode failures) asserts neither.
func recordFault(out *models.CheckOutcome, err error) {
	out.Error = err.Error()

	var apiErr *freeplay.APIError
	var urlErr *url.Error
	switch {
	case errors.As(err, &apiErr):
		reachable := true
		out.APIReachable = &reachable
		out.StatusCode = apiErr.StatusCode
	case errors.As(err, &urlErr):
		reachable := false
		out.APIReachable = &reachable
	}
}

func (a *APIChecker) searchFilter() freeplay.SearchFilter {
	return freeplay.SearchFilter{Field: "start_time", Operator: "gte", Value: a.window.Since}
}

// recentCompletions searches with the best-effort server-side filter and
// re-filters client-side against the window.
func (a *APIChecker) recentCompletions(ctx context.Context) (*freeplay.CompletionSearch, []freeplay.Completion, error) {
	search, err := a.client.SearchCompletions(ctx, a.searchFilter())
	if err != nil {
		return nil, nil, err
	}
	return search, a.window.FilterRecords(search.Completions), nil
}

func (a *APIChecker) completionLogged(ctx context.Context, out *models.CheckOutcome) error {
	search, recent, err := a.recentCompletions(ctx)
	if err != nil {
		return err
	}

	count := window.ReconciledCount(len(recent), len(search.Completions))
	total := len(search.Completions)

	markReachable(out)
	out.StatusCode = search.StatusCode
	out.CompletionCount = &count
	out.TotalReturned = &total
	out.Since = a.window.Since
	if count > 0 {
		out.Passed = models.VerdictPassed
	}
	return nil
}

func (a *APIChecker) promptExists(ctx context.Context, out *models.CheckOutcome, promptName string) error {
	templates, err := a.client.ListPromptTemplates(ctx)
	if err != nil {
		return err
	}

	markReachable(out)
	out.PromptName = promptName
	count := len(templates)
	out.TemplateCount = &count
	for _, t := range templates {
		if t.Name == promptName {
			out.Passed = models.VerdictPassed
			break
		}
	}
	return nil
}

func (a *APIChecker) completionHasPrompt(ctx context.Context, out *models.CheckOutcome) error {
	search, recent, err := a.recentCompletions(ctx)
	if err != nil {
		return err
	}

	count := len(recent)
	total := len(search.Completions)

	markReachable(out)
	out.StatusCode = search.StatusCode
	out.CompletionCount = &count
	out.TotalReturned = &total
	out.Since = a.window.Since

	for _, c := range recent {
		meta, ok := c["completion_metadata"].(map[string]interface{})
		if !ok {
			continue
		}
		if tmpl := meta["prompt_template"]; truthy(tmpl) {
			out.PromptTemplate = tmpl
			out.Passed = models.VerdictPassed
			break
		}
	}
	return nil
}

func (a *APIChecker) promptHasVariable(ctx context.Context, out *models.CheckOutcome, promptName, variableName string) error {
	templates, err := a.client.ListPromptTemplates(ctx)
	if err != nil {
		return err
	}

	markReachable(out)
	out.PromptName = promptName
	out.VariableName = variableName

	var target *freeplay.PromptTemplate
	for i := range templates {
		if templates[i].Name == promptName {
			target = &templates[i]
			break
		}
	}
	if target == nil {
		out.Error = "prompt template not found: " + promptName
		return nil
	}
	if target.LatestVersionID == "" {
		out.Error = "prompt template has no latest version: " + promptName
		return nil
	}

	version, err := a.client.GetTemplateVersion(ctx, target.ID, target.LatestVersionID)
	if err != nil {
		return err
	}

	needle := "{{" + variableName + "}}"
	for _, msg := range version.Messages {
		if strings.Contains(msg.Content, needle) {
			out.Passed = models.VerdictPassed
			break
		}
	}
	return nil
}

func (a *APIChecker) datasetExists(ctx context.Context, out *models.CheckOutcome, datasetName string) error {
	datasets, err := a.client.ListDatasets(ctx)
	if err != nil {
		return err
	}

	markReachable(out)
	out.DatasetName = datasetName
	for _, d := range datasets {
		if d.Name == datasetName {
			out.Passed = models.VerdictPassed
			break
		}
	}
	return nil
}

func (a *APIChecker) datasetHasTestCases(ctx context.Context, out *models.CheckOutcome, datasetName string, minCases int) error {
	if minCases <= 0 {
		minCases = 1
	}

	datasets, err := a.client.ListDatasets(ctx)
	if err != nil {
		return err
	}
	markReachable(out)
	if len(datasets) == 0 {
		out.Error = "no datasets in project"
		return nil
	}

	// Fall back to the first listed dataset when no exact name match.
	target := datasets[0]
	for _, d := range datasets {
		if d.Name == datasetName {
			target = d
			break
		}
	}
	out.DatasetName = target.Name

	cases, err := a.client.ListTestCases(ctx, target.ID)
	if err != nil {
		return err
	}
	count := len(cases)
	out.TestCaseCount = &count
	if count >= minCases {
		out.Passed = models.VerdictPassed
	}
	return nil
}

func (a *APIChecker) testRunExists(ctx context.Context, out *models.CheckOutcome) error {
	runs, err := a.client.ListTestRuns(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, r := range runs {
		if a.window.ContainsEpoch(r.CreatedAt) {
			count++
		}
	}

	markReachable(out)
	out.Since = a.window.Since
	out.TestRunCount = &count
	if count > 0 {
		out.Passed = models.VerdictPassed
	}
	return nil
}

func (a *APIChecker) testRunHasSessions(ctx context.Context, out *models.CheckOutcome, minSessions int) error {
	if minSessions <= 0 {
		minSessions = 1
	}

	runs, err := a.client.ListTestRuns(ctx)
	if err != nil {
		return err
	}
	markReachable(out)
	out.Since = a.window.Since

	// Most-recently-listed in-window run is the one the scenario just made.
	var target *freeplay.TestRun
	for i := range runs {
		if a.window.ContainsEpoch(runs[i].CreatedAt) {
			target = &runs[i]
		}
	}
	if target == nil {
		out.Error = "no test runs in window"
		return nil
	}

	detail, err := a.client.GetTestRun(ctx, target.ID)
	if err != nil {
		return err
	}
	sessions := detail.SessionCount
	out.SessionCount = &sessions
	if sessions >= minSessions {
		out.Passed = models.VerdictPassed
	}
	return nil
}

func markReachable(out *models.CheckOutcome) {
	reachable := true
	out.APIReachable = &reachable
}

// truthy applies the loose presence test used on metadata values: nil, empty
// text, empty containers, zero numbers, and false all count as absent.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}
