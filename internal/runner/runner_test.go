package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/proctor/internal/config"
	"github.com/harrison/proctor/internal/logger"
	"github.com/harrison/proctor/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Freeplay: config.Freeplay{BaseURL: "https://api.freeplay.ai", VerifySSL: "true"},
		Eval: config.Eval{
			StartTime:    "2024-01-15 10:30:00",
			EndTime:      "2024-01-15 10:35:00",
			DurationSecs: 300,
		},
		Harness: config.DefaultHarness(),
	}
}

func newRunner(t *testing.T, cfg *config.Config) *Runner {
	t.Helper()
	r, err := New(cfg, logger.NewConsoleLogger(&bytes.Buffer{}, "debug"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_InvalidStartTime(t *testing.T) {
	cfg := testConfig()
	cfg.Eval.StartTime = "later today"
	if _, err := New(cfg, logger.NewConsoleLogger(&bytes.Buffer{}, "info")); err == nil {
		t.Fatal("expected error for unparseable start time")
	}
}

func TestNew_ExplicitWindowBoundary(t *testing.T) {
	r := newRunner(t, testConfig())
	if r.Window().Since != "2024-01-15 10:30:00" {
		t.Errorf("Since = %q", r.Window().Since)
	}
}

func TestRun_ExecutesCriteriaInDeclaredOrder(t *testing.T) {
	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, "main.py"), []byte("model = 'gpt-4o-mini'"), 0o644); err != nil {
		t.Fatal(err)
	}

	scenario := &models.Scenario{
		Name: "integration-with-prompt",
		SuccessCriteria: []models.SuccessCriterion{
			{
				Type:        models.CheckFileContains,
				Description: "Code references the managed model",
				File:        "main.py",
				Patterns:    []string{"gpt-4o-mini"},
			},
			{
				Type:        models.CheckCodeRuns,
				Description: "Project runs cleanly",
				Command:     "echo ok",
			},
			{
				Type:        models.CheckAPIVerify,
				Description: "Completion was logged",
				Method:      models.MethodSearchCompletions,
			},
			{
				Type:        "telepathy",
				Description: "Reads the developer's mind",
			},
		},
		Scoring: map[string]models.RubricEntry{
			"code_modified":     {Points: 10},
			"code_runs":         {Points: 15},
			"completion_logged": {Points: 30},
		},
	}

	doc := newRunner(t, testConfig()).Run(context.Background(), scenario, projectDir, models.ModeBaseline)

	if len(doc.Checks) != 4 {
		t.Fatalf("checks = %d, want 4", len(doc.Checks))
	}

	if doc.Checks[0].Check != models.CheckFileContains || doc.Checks[0].Passed != models.VerdictPassed {
		t.Errorf("check 0 = %+v", doc.Checks[0])
	}
	if doc.Checks[1].Check != models.CheckCodeRuns || doc.Checks[1].Passed != models.VerdictPassed {
		t.Errorf("check 1 = %+v", doc.Checks[1])
	}

	// No credentials configured: the API check is skipped, not failed.
	if !doc.Checks[2].Skipped || doc.Checks[2].Passed != models.VerdictSkipped {
		t.Errorf("check 2 = %+v, want skipped", doc.Checks[2])
	}

	if doc.Checks[3].Check != "telepathy" {
		t.Errorf("check 3 kind = %q", doc.Checks[3].Check)
	}
	if doc.Checks[3].Error != "Unknown check type: telepathy" {
		t.Errorf("check 3 error = %q", doc.Checks[3].Error)
	}
	if doc.Checks[3].Passed != models.VerdictFailed {
		t.Errorf("check 3 passed = %v, want fail", doc.Checks[3].Passed)
	}

	for i, want := range []string{
		"Code references the managed model",
		"Project runs cleanly",
		"Completion was logged",
		"Reads the developer's mind",
	} {
		if doc.Checks[i].Description != want {
			t.Errorf("check %d description = %q, want %q", i, doc.Checks[i].Description, want)
		}
	}
}

func TestRun_AssemblesDocument(t *testing.T) {
	projectDir := t.TempDir()
	scenario := &models.Scenario{
		Name: "create-prompt-and-dataset",
		SuccessCriteria: []models.SuccessCriterion{
			{Type: models.CheckCodeRuns, Command: "true"},
		},
		Scoring: map[string]models.RubricEntry{"code_runs": {Points: 15}},
	}

	doc := newRunner(t, testConfig()).Run(context.Background(), scenario, projectDir, models.ModeWithPlugin)

	if doc.Scenario != "create-prompt-and-dataset" {
		t.Errorf("scenario = %q", doc.Scenario)
	}
	if doc.Mode != models.ModeWithPlugin {
		t.Errorf("mode = %q", doc.Mode)
	}
	if doc.ProjectDir != projectDir {
		t.Errorf("project_dir = %q", doc.ProjectDir)
	}
	if doc.RunID == "" {
		t.Error("run_id not assigned")
	}
	if !strings.HasSuffix(doc.Timestamp, "Z") || !strings.Contains(doc.Timestamp, "T") {
		t.Errorf("timestamp = %q", doc.Timestamp)
	}
	if doc.Timing.StartTime != "2024-01-15 10:30:00" || doc.Timing.DurationSeconds != 300 {
		t.Errorf("timing = %+v", doc.Timing)
	}
	if doc.Score.Total != 15 || doc.Score.MaxTotal != 15 {
		t.Errorf("score = %d/%d, want 15/15", doc.Score.Total, doc.Score.MaxTotal)
	}
	if !doc.AllSatisfied() {
		t.Error("AllSatisfied should hold when the only check passed")
	}
}

func TestRun_FailureIsolatedToItsCriterion(t *testing.T) {
	projectDir := t.TempDir()
	scenario := &models.Scenario{
		Name: "fault-isolation",
		SuccessCriteria: []models.SuccessCriterion{
			{Type: models.CheckFileContains, File: "absent.py", Patterns: []string{"x"}},
			{Type: models.CheckCodeRuns, Command: "echo still running"},
		},
		Scoring: map[string]models.RubricEntry{
			"code_modified": {Points: 10},
			"code_runs":     {Points: 15},
		},
	}

	doc := newRunner(t, testConfig()).Run(context.Background(), scenario, projectDir, models.ModeBaseline)

	if doc.Checks[0].Error == "" {
		t.Error("first check should carry the missing-file error")
	}
	if doc.Checks[1].Passed != models.VerdictPassed {
		t.Errorf("second check = %+v, should still have run", doc.Checks[1])
	}
	if doc.Score.Total != 15 || doc.Score.MaxTotal != 25 {
		t.Errorf("score = %d/%d, want 15/25", doc.Score.Total, doc.Score.MaxTotal)
	}
	if doc.AllSatisfied() {
		t.Error("AllSatisfied should fail with a failed check present")
	}
}
