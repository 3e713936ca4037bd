package application

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pipegate/pipegate/internal/domain"
	"github.com/pipegate/pipegate/internal/domain/checks"
)

// Default file names under the configured output directory.
const (
	ResultsFileName = "results.json"
	ReportFileName  = "report.md"
	LogFileName     = "pipegate.log"
)

// StoreFactory builds a result store for a session-scoped path. Every session
// owns its own document; concurrent sessions must not share a path.
type StoreFactory func(path string) domain.ResultStore

// SessionService drives one validation session through its lifecycle:
// Created -> Initialized -> Running -> Scored -> Terminal. Check failures are
// recorded and scored as zero; only persistence failures abort the session.
type SessionService struct {
	scanner  domain.ArtifactScanner
	runner   domain.CommandRunner
	sampler  domain.MetricsSampler
	git      domain.GitInfo
	history  domain.ValidationHistory
	log      domain.EventLog
	newStore StoreFactory
	clock    func() time.Time
}

// RunOptions adjusts a single session run.
type RunOptions struct {
	// ResultsPath overrides the results document location.
	ResultsPath string
	// ReportPath overrides the markdown report location.
	ReportPath string
	// MinScore overrides the configured pass threshold when positive.
	MinScore int
	// Dimensions overrides the built-in dimension set (used by tests).
	Dimensions []checks.DimensionSpec
}

// NewSessionService wires a session service from its ports.
func NewSessionService(
	scanner domain.ArtifactScanner,
	runner domain.CommandRunner,
	sampler domain.MetricsSampler,
	git domain.GitInfo,
	history domain.ValidationHistory,
	log domain.EventLog,
	newStore StoreFactory,
) *SessionService {
	return &SessionService{
		scanner:  scanner,
		runner:   runner,
		sampler:  sampler,
		git:      git,
		history:  history,
		log:      log,
		newStore: newStore,
		clock:    time.Now,
	}
}

// Run executes a full validation session against projectPath. The returned
// SessionResult carries the pass/fail verdict; an error means the session
// aborted before producing a verdict.
func (s *SessionService) Run(ctx context.Context, projectPath string, cfg domain.ProjectConfig, opts RunOptions) (*domain.SessionResult, error) {
	start := s.clock()

	specs := opts.Dimensions
	if specs == nil {
		specs = checks.DefaultDimensions()
	}
	active := make([]checks.DimensionSpec, 0, len(specs))
	weights := make(map[string]int, len(specs))
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		if cfg.IsSkippedDimension(spec.Name) {
			continue
		}
		spec.Weight = cfg.EffectiveWeight(spec.Name, spec.Weight)
		active = append(active, spec)
		weights[spec.Name] = spec.Weight
		names = append(names, spec.Name)
	}

	if err := cfg.Validate(weights); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	threshold := cfg.Targets.MinScore
	if opts.MinScore > 0 {
		threshold = opts.MinScore
	}

	tree, err := s.scanner.Scan(projectPath, cfg.ExcludePaths...)
	if err != nil {
		return nil, fmt.Errorf("scanning artifacts: %w", err)
	}

	meta := domain.SessionMeta{
		ID:        fmt.Sprintf("%d-%s", start.Unix(), uuid.NewString()[:8]),
		StartTime: start,
		Status:    domain.SessionStatusInProgress,
	}
	if hash, err := s.git.CommitHash(projectPath); err == nil {
		meta.CommitHash = hash
	}

	resultsPath := opts.ResultsPath
	if resultsPath == "" {
		resultsPath = filepath.Join(projectPath, cfg.OutputDir, ResultsFileName)
	}
	store := s.newStore(resultsPath)
	if err := store.Initialize(meta, cfg.Targets, names); err != nil {
		return nil, fmt.Errorf("initializing results store: %w", err)
	}
	s.log.Infof("session %s started (threshold %d, %d dimensions)", meta.ID, threshold, len(active))

	tracker := NewStageTracker(store, s.sampler, s.log)
	validator := NewDimensionValidator(tree, s.runner, tracker, s.log)

	dimensions := make([]domain.Dimension, 0, len(active))
	for _, spec := range active {
		handle, err := tracker.Start("dimension:" + spec.Name)
		if err != nil {
			return nil, fmt.Errorf("tracking dimension %s: %w", spec.Name, err)
		}

		dim, err := validator.Evaluate(ctx, spec, cfg.CommandChecks, cfg.IsSkippedCheck)
		if err != nil {
			return nil, fmt.Errorf("validating dimension %s: %w", spec.Name, err)
		}

		partial, err := domain.Partial(dim)
		if err != nil {
			return nil, err
		}
		if err := store.MergeUpdate("dimensions."+spec.Name, partial); err != nil {
			return nil, fmt.Errorf("recording dimension %s: %w", spec.Name, err)
		}
		if err := tracker.End(handle, domain.StageSuccess); err != nil {
			return nil, fmt.Errorf("tracking dimension %s: %w", spec.Name, err)
		}

		s.log.Infof("dimension %s scored %d%% (%s)", dim.Name, dim.ScorePercent, dim.Status)
		dimensions = append(dimensions, dim)
	}

	composite := domain.ScoreComposite(dimensions, weights, threshold)
	summary := summarize(dimensions, composite)

	compositePartial, err := domain.Partial(composite)
	if err != nil {
		return nil, err
	}
	summaryPartial, err := domain.Partial(summary)
	if err != nil {
		return nil, err
	}
	terminal := domain.StatusForGrade(composite.Grade)
	if err := store.MergeUpdate("composite", compositePartial); err != nil {
		return nil, fmt.Errorf("recording composite score: %w", err)
	}
	if err := store.MergeUpdate("summary", summaryPartial); err != nil {
		return nil, fmt.Errorf("recording summary: %w", err)
	}
	if err := store.MergeUpdate("session", map[string]any{"status": terminal}); err != nil {
		return nil, fmt.Errorf("recording session status: %w", err)
	}

	doc, err := store.Read()
	if err != nil {
		return nil, err
	}

	reportPath := opts.ReportPath
	if reportPath == "" {
		reportPath = filepath.Join(projectPath, cfg.OutputDir, ReportFileName)
	}
	if err := WriteReport(doc, reportPath); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	// Best-effort: history is an artifact, not part of the verdict.
	_ = s.history.Save(projectPath, domain.HistoryEntry{
		Timestamp:  start.Format(time.RFC3339),
		SessionID:  meta.ID,
		CommitHash: meta.CommitHash,
		Total:      composite.Total,
		Grade:      composite.Grade,
		Passed:     composite.Passed,
	})

	if composite.Passed {
		s.log.Successf("session %s passed: %d/100 grade %s", meta.ID, composite.Total, composite.Grade)
	} else {
		s.log.Errorf("session %s failed: %d/100 grade %s (threshold %d)", meta.ID, composite.Total, composite.Grade, threshold)
	}

	return &domain.SessionResult{
		SessionID:   meta.ID,
		Composite:   composite,
		Dimensions:  dimensions,
		Summary:     summary,
		Document:    doc,
		ResultsPath: resultsPath,
		ReportPath:  reportPath,
	}, nil
}

func summarize(dimensions []domain.Dimension, composite domain.CompositeScore) domain.Summary {
	sum := domain.Summary{
		ComplianceScore: composite.Total,
		ComplianceGrade: composite.Grade,
		Status:          "failed",
	}
	if composite.Passed {
		sum.Status = "passed"
	}
	for _, d := range dimensions {
		for _, c := range d.Checks {
			sum.TotalValidations++
			if c.Passed {
				sum.PassedValidations++
			} else {
				sum.FailedValidations++
			}
		}
	}
	return sum
}
