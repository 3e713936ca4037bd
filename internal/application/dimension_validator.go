package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pipegate/pipegate/internal/domain"
	"github.com/pipegate/pipegate/internal/domain/checks"
)

// DimensionValidator runs the checks of one compliance dimension and derives
// its score. A failing or panicking predicate is recorded as a failed check
// with evidence, never an aborted dimension: only persistence failures
// propagate.
type DimensionValidator struct {
	tree    *domain.ArtifactTree
	runner  domain.CommandRunner
	tracker *StageTracker
	log     domain.EventLog
}

// NewDimensionValidator creates a validator over the scanned artifact tree.
func NewDimensionValidator(tree *domain.ArtifactTree, runner domain.CommandRunner, tracker *StageTracker, log domain.EventLog) *DimensionValidator {
	return &DimensionValidator{tree: tree, runner: runner, tracker: tracker, log: log}
}

// Evaluate runs every check of the dimension spec plus any configured command
// checks, and returns the scored dimension. skip filters individual checks by
// name.
func (v *DimensionValidator) Evaluate(ctx context.Context, spec checks.DimensionSpec, commandChecks []domain.CommandCheck, skip func(string) bool) (domain.Dimension, error) {
	dim := domain.Dimension{Name: spec.Name}

	for _, def := range spec.Checks {
		if skip != nil && skip(def.Name) {
			continue
		}
		res := runPredicate(def.Predicate, v.tree)
		v.record(&dim, domain.Check{
			Name:     def.Name,
			Passed:   res.Passed,
			Points:   def.Points,
			Evidence: res.Evidence,
		})
	}

	for _, cc := range commandChecks {
		if cc.Dimension != spec.Name {
			continue
		}
		if skip != nil && skip(cc.Name) {
			continue
		}
		check, err := v.runCommandCheck(ctx, cc)
		if err != nil {
			return dim, err
		}
		v.record(&dim, check)
	}

	dim.Status = spec.Rubric.Label(dim.ScorePercent)
	dim.Validated = true
	return dim, nil
}

func (v *DimensionValidator) record(dim *domain.Dimension, c domain.Check) {
	dim.Append(c)
	if c.Passed {
		v.log.Successf("check %s/%s passed (%d pts): %s", dim.Name, c.Name, c.Points, c.Evidence)
	} else {
		v.log.Warnf("check %s/%s failed (0/%d pts): %s", dim.Name, c.Name, c.Points, c.Evidence)
	}
}

// runCommandCheck executes an external command check under its configured
// deadline. Timeouts and non-zero exits become failed checks.
func (v *DimensionValidator) runCommandCheck(ctx context.Context, cc domain.CommandCheck) (domain.Check, error) {
	timeout := time.Duration(cc.TimeoutSeconds) * time.Second
	stageName := fmt.Sprintf("check:%s", cc.Name)

	var run domain.CmdResult
	monitored, err := v.tracker.Monitor(ctx, stageName, timeout, func(workCtx context.Context) error {
		result, runErr := v.runner.Run(workCtx, cc.Command[0], cc.Command[1:], v.tree.Root)
		run = result
		if runErr != nil {
			return runErr
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("exit code %d", result.ExitCode)
		}
		return nil
	})
	if err != nil {
		return domain.Check{}, err
	}

	check := domain.Check{Name: cc.Name, Points: cc.Points}
	switch monitored.Outcome {
	case OutcomeSuccess:
		check.Passed = true
		check.Evidence = fmt.Sprintf("%s succeeded in %.2fs", strings.Join(cc.Command, " "), monitored.Duration.Seconds())
	case OutcomeTimedOut:
		check.Evidence = monitored.Err.Error()
	default:
		evidence := monitored.Err.Error()
		if trimmed := strings.TrimSpace(run.Stderr); trimmed != "" {
			evidence = fmt.Sprintf("%s: %s", evidence, firstLine(trimmed))
		}
		check.Evidence = evidence
	}
	return check, nil
}

// runPredicate evaluates a predicate, converting a panic into a failed check
// so one bad check never aborts the run.
func runPredicate(p checks.Predicate, tree *domain.ArtifactTree) (res checks.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = checks.Result{Evidence: fmt.Sprintf("check panicked: %v", r)}
		}
	}()
	if p == nil {
		return checks.Result{Evidence: "check has no predicate"}
	}
	return p(tree)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
