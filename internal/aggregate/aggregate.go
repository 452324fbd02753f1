// Package aggregate fans analyzer runs out over a bounded worker pool and
// merges their findings into one deterministic list. A single tool timing
// out or crashing never blocks or fails the others.
package aggregate

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/log"
)

// Task pairs an adapter with its run budget. A zero timeout means the
// task only answers to the global budget.
type Task struct {
	Adapter adapter.Adapter
	Timeout time.Duration
}

// Options tune a run.
type Options struct {
	// MaxParallel caps concurrent analyzer processes; values below 1
	// run the tasks sequentially
	MaxParallel int

	// Exclude drops findings in excluded files after parsing. Nil keeps
	// everything.
	Exclude func(file string) bool

	// Logger receives per-tool progress; nil uses the default logger
	Logger *log.Logger
}

// Result is the merged output of one aggregation run.
type Result struct {
	// Findings is deduplicated and sorted; ordering is independent of
	// completion order
	Findings []finding.Finding

	// TaskFindings holds each task's own findings in task order, before
	// merging; result caching works off this view
	TaskFindings [][]finding.Finding

	// Runs records every task in task order, including degraded ones
	Runs []adapter.Run
}

// Run executes all tasks over the same target set. Each worker owns its
// own slice; merging happens strictly after the barrier. Degradations are
// recorded on the runs, never returned as errors.
func Run(ctx context.Context, tasks []Task, targets []string, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	parallel := opts.MaxParallel
	if parallel < 1 {
		parallel = 1
	}

	findingsByTask := make([][]finding.Finding, len(tasks))
	runs := make([]adapter.Run, len(tasks))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, task := range tasks {
		g.Go(func() error {
			runs[i], findingsByTask[i] = runTask(ctx, task, targets, opts.Exclude, logger)
			return nil
		})
	}
	// Workers never return errors, the barrier is all we need
	_ = g.Wait()

	var all []finding.Finding
	for _, fs := range findingsByTask {
		all = append(all, fs...)
	}

	merged := Dedupe(all)
	Sort(merged)

	return &Result{Findings: merged, TaskFindings: findingsByTask, Runs: runs}
}

// runTask invokes and parses one analyzer under its own deadline.
func runTask(parent context.Context, task Task, targets []string, exclude func(string) bool, logger *log.Logger) (adapter.Run, []finding.Finding) {
	a := task.Adapter
	toolLog := logger.WithTool(a.Name())

	run := adapter.Run{
		Tool:     a.Name(),
		Kind:     a.Kind(),
		Security: a.Security(),
		Status:   adapter.StatusOK,
	}

	ctx := parent
	cancel := func() {}
	if task.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, task.Timeout)
	}
	defer cancel()

	toolLog.Debug("analyzer started", "targets", len(targets))
	start := time.Now()

	raw, err := a.Invoke(ctx, targets)
	if err != nil {
		run.Duration = time.Since(start)
		run.Error = err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			run.Status = adapter.StatusTimeout
		} else {
			run.Status = adapter.StatusCrashed
		}
		toolLog.Warn("analyzer degraded", "status", string(run.Status), "error", run.Error)
		return run, nil
	}

	found, err := a.Parse(raw)
	run.Duration = time.Since(start)
	if err != nil {
		run.Status = adapter.StatusCrashed
		run.Error = err.Error()
		toolLog.Warn("analyzer degraded", "status", string(run.Status), "error", run.Error)
		return run, nil
	}

	kept := make([]finding.Finding, 0, len(found))
	for _, f := range found {
		if exclude != nil && f.Location != nil && exclude(f.Location.File) {
			continue
		}
		fp, err := finding.Fingerprint(f)
		if err != nil {
			run.Status = adapter.StatusCrashed
			run.Error = err.Error()
			toolLog.Warn("analyzer degraded", "status", string(run.Status), "error", run.Error)
			return run, nil
		}
		f.Fingerprint = fp
		kept = append(kept, f)
	}

	run.Findings = len(kept)
	toolLog.Debug("analyzer finished",
		"findings", run.Findings,
		"duration", run.Duration.String())
	return run, kept
}
