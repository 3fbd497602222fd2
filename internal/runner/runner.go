// Package runner executes one scenario's criteria in declared order against
// a project directory and assembles the run's result document.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/proctor/internal/checks"
	"github.com/harrison/proctor/internal/config"
	"github.com/harrison/proctor/internal/logger"
	"github.com/harrison/proctor/internal/models"
	"github.com/harrison/proctor/internal/scoring"
	"github.com/harrison/proctor/internal/window"
)

// timestampLayout renders document timestamps: UTC with microseconds and a
// literal Z suffix appended by the formatter call.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Runner executes scenarios. A single runner fixes the evaluation window and
// platform credentials for every run it performs; runs against different
// project directories are independent.
type Runner struct {
	window window.Window
	api    *checks.APIChecker
	code   *checks.CodeRunner
	eval   config.Eval
	log    *logger.ConsoleLogger
}

// New builds a runner from the loaded configuration. It fails only when the
// configured evaluation start time does not parse; that is caught here so no
// check ever runs against a bogus window.
func New(cfg *config.Config, log *logger.ConsoleLogger) (*Runner, error) {
	w, err := window.At(cfg.Eval.StartTime, time.Now())
	if err != nil {
		return nil, err
	}

	code := checks.NewCodeRunner()
	if cfg.Harness.CheckTimeout > 0 {
		code.DefaultTimeout = cfg.Harness.CheckTimeout
	}

	return &Runner{
		window: w,
		api:    checks.NewAPIChecker(cfg.Freeplay, w),
		code:   code,
		eval:   cfg.Eval,
		log:    log,
	}, nil
}

// Window exposes the run's time boundary for logging.
func (r *Runner) Window() window.Window {
	return r.window
}

// Run executes every criterion of the scenario in declared order against
// projectDir and returns the assembled document. A failing check is a
// terminal outcome for its criterion only; the remaining criteria still run.
func (r *Runner) Run(ctx context.Context, s *models.Scenario, projectDir, mode string) *models.ResultDocument {
	r.log.Infof("verifying scenario %s against %s", s.Name, projectDir)

	outcomes := make([]*models.CheckOutcome, 0, len(s.SuccessCriteria))
	for i := range s.SuccessCriteria {
		criterion := &s.SuccessCriteria[i]
		r.log.Debugf("check %d/%d: %s", i+1, len(s.SuccessCriteria), criterion.Type)

		out := r.runCheck(ctx, projectDir, criterion)
		out.Description = criterion.Description
		outcomes = append(outcomes, out)
	}

	score := scoring.Calculate(s.Scoring, outcomes)

	doc := &models.ResultDocument{
		Scenario:   s.Name,
		RunID:      uuid.NewString(),
		Mode:       mode,
		Timestamp:  time.Now().UTC().Format(timestampLayout) + "Z",
		ProjectDir: projectDir,
		Timing: models.Timing{
			StartTime:       r.eval.StartTime,
			EndTime:         r.eval.EndTime,
			DurationSeconds: r.eval.DurationSecs,
		},
		Checks: make([]models.CheckOutcome, len(outcomes)),
		Score:  *score,
	}
	for i, out := range outcomes {
		doc.Checks[i] = *out
	}

	r.log.Infof("score %d/%d (%.1f%%)", score.Total, score.MaxTotal, score.Percentage)
	return doc
}

func (r *Runner) runCheck(ctx context.Context, projectDir string, criterion *models.SuccessCriterion) *models.CheckOutcome {
	switch criterion.Type {
	case models.CheckFileContains:
		return checks.FileContains(projectDir, criterion.File, criterion.Patterns)
	case models.CheckCodeRuns:
		return r.code.Check(ctx, projectDir, criterion.Command, criterion.Timeout)
	case models.CheckAPIVerify:
		return r.api.Check(ctx, *criterion)
	default:
		return &models.CheckOutcome{
			Check: criterion.Type,
			Error: "Unknown check type: " + criterion.Type,
		}
	}
}
