package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pipegate/pipegate/internal/domain"
)

// StageTracker times named stages and records them in the result store. Every
// stage transition is persisted before control returns to the caller, so a
// crash mid-session leaves a partially filled but structurally valid document.
type StageTracker struct {
	store   domain.ResultStore
	sampler domain.MetricsSampler
	log     domain.EventLog
	clock   func() time.Time
}

// StageHandle identifies a started stage.
type StageHandle struct {
	name  string
	start time.Time
}

// Outcome classifies the result of a monitored unit of work.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
)

// MonitorResult reports how a monitored unit of work finished.
type MonitorResult struct {
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// NewStageTracker creates a StageTracker writing into store.
func NewStageTracker(store domain.ResultStore, sampler domain.MetricsSampler, log domain.EventLog) *StageTracker {
	return &StageTracker{store: store, sampler: sampler, log: log, clock: time.Now}
}

// Start records a running stage. The returned error is a persistence failure
// and fatal to the session.
func (t *StageTracker) Start(name string) (*StageHandle, error) {
	h := &StageHandle{name: name, start: t.clock()}

	partial, err := domain.Partial(domain.Stage{
		Name:      name,
		StartTime: h.start,
		Status:    domain.StageRunning,
	})
	if err != nil {
		return nil, err
	}
	if err := t.store.MergeUpdate("stages."+name, partial); err != nil {
		return nil, err
	}

	t.log.Infof("stage %s started", name)
	return h, nil
}

// End records the terminal status, the stage duration, and a system resource
// snapshot.
func (t *StageTracker) End(h *StageHandle, status string) error {
	end := t.clock()
	stage := domain.Stage{
		Name:            h.name,
		StartTime:       h.start,
		EndTime:         &end,
		DurationSeconds: end.Sub(h.start).Seconds(),
		Status:          status,
	}

	if metrics, err := t.sampler.Sample(); err == nil {
		stage.SystemMetrics = &metrics
	}

	partial, err := domain.Partial(stage)
	if err != nil {
		return err
	}
	if err := t.store.MergeUpdate("stages."+h.name, partial); err != nil {
		return err
	}

	t.log.Metricf("stage %s %s in %.2fs", h.name, status, stage.DurationSeconds)
	if stage.SystemMetrics != nil {
		t.log.Metricf("stage %s resources: cpu %.1f%% mem %.1f%% disk %.1f%% load %.2f",
			h.name, stage.SystemMetrics.CPUPercent, stage.SystemMetrics.MemoryPercent,
			stage.SystemMetrics.DiskPercent, stage.SystemMetrics.LoadAverage)
	}
	return nil
}

// Monitor wraps a unit of work with a deadline. Work exceeding the deadline
// is terminated through its context and the stage is marked timeout; any
// other failure marks it failed. One attempt only: there is no retry loop.
// The returned error is reserved for persistence failures, which are fatal;
// the work's own failure is reported through MonitorResult.
func (t *StageTracker) Monitor(ctx context.Context, name string, timeout time.Duration, work func(context.Context) error) (MonitorResult, error) {
	h, err := t.Start(name)
	if err != nil {
		return MonitorResult{}, err
	}

	workCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workErr := work(workCtx)
	duration := t.clock().Sub(h.start)

	var res MonitorResult
	switch {
	case errors.Is(workCtx.Err(), context.DeadlineExceeded):
		res = MonitorResult{
			Outcome:  OutcomeTimedOut,
			Err:      fmt.Errorf("%s exceeded deadline of %s", name, timeout),
			Duration: duration,
		}
		err = t.End(h, domain.StageTimeout)
	case workErr != nil:
		res = MonitorResult{Outcome: OutcomeFailed, Err: workErr, Duration: duration}
		err = t.End(h, domain.StageFailed)
	default:
		res = MonitorResult{Outcome: OutcomeSuccess, Duration: duration}
		err = t.End(h, domain.StageSuccess)
	}
	if err != nil {
		return res, err
	}
	return res, nil
}
