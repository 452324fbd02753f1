// Package gate wires one full evaluation together: adapters built from the
// configuration, the result cache, the concurrent aggregator and the policy
// engine. It has no side effects beyond reading files, invoking analyzers
// and, when enabled, the local cache database.
package gate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/aggregate"
	"github.com/felixgeelhaar/lintgate/internal/cache"
	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/finding"
	"github.com/felixgeelhaar/lintgate/internal/log"
	"github.com/felixgeelhaar/lintgate/internal/policy"
	"github.com/felixgeelhaar/lintgate/internal/target"
)

// Runner evaluates the gate for a target set.
type Runner struct {
	Config *config.Config

	// Scope narrows blocking findings to changed line ranges; nil gates
	// the full target set
	Scope *target.Scope

	// NoCache bypasses the result cache even when the config enables it
	NoCache bool

	// Logger receives run progress; nil uses the default logger
	Logger *log.Logger
}

// Result is one evaluation with the metadata reports and attestations
// need to reference it.
type Result struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Targets   []string         `json:"targets"`
	Decision  *policy.Decision `json:"decision"`
}

// toolPlan tracks one enabled tool through the run: its cache key, a hit
// when one was found, and eventually its run record and findings.
type toolPlan struct {
	tool     config.Tool
	adapter  adapter.Adapter
	key      string
	hit      *cache.Entry
	run      adapter.Run
	findings []finding.Finding
}

// Evaluate runs every enabled analyzer over the targets and returns the
// policy decision. Configuration and suppression problems are returned as
// errors before any analyzer runs; analyzer degradations are recorded on
// the decision instead. An empty target list means the current directory.
func (r *Runner) Evaluate(ctx context.Context, targets []string) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	cfg := r.Config

	if err := cfg.Validate(adapter.Kinds()); err != nil {
		return nil, err
	}
	rules, err := cfg.ResolveSuppressions()
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		targets = []string{"."}
	}

	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Targets:   targets,
	}

	tools := cfg.EnabledTools()
	plans := make([]*toolPlan, 0, len(tools))
	for _, tool := range tools {
		a, err := adapter.New(tool)
		if err != nil {
			return nil, err
		}
		plans = append(plans, &toolPlan{tool: tool, adapter: a})
	}

	logger.Debug("gate started",
		"run_id", result.RunID,
		"tools", len(plans),
		"targets", len(targets))

	store := r.openCache(logger)
	if store != nil {
		defer store.Close()
		r.consultCache(store, plans, targets, logger)
	}

	if cfg.GlobalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.GlobalTimeout)
		defer cancel()
	}

	var fresh []aggregate.Task
	var freshPlans []*toolPlan
	for _, p := range plans {
		if p.hit != nil {
			continue
		}
		fresh = append(fresh, aggregate.Task{
			Adapter: p.adapter,
			Timeout: p.tool.EffectiveTimeout(cfg.TimeoutPerTool),
		})
		freshPlans = append(freshPlans, p)
	}

	agg := aggregate.Run(ctx, fresh, targets, aggregate.Options{
		MaxParallel: cfg.MaxParallel,
		Exclude:     cfg.Excluded,
		Logger:      logger,
	})
	for i, p := range freshPlans {
		p.run = agg.Runs[i]
		p.findings = agg.TaskFindings[i]
		if store != nil && p.key != "" && p.run.Status == adapter.StatusOK {
			entry := &cache.Entry{Run: p.run, Findings: p.findings}
			if err := store.Put(p.key, entry); err != nil {
				logger.Warn("cache store failed", "tool", p.tool.Name, "error", err.Error())
			}
		}
	}
	for _, p := range plans {
		if p.hit == nil {
			continue
		}
		p.run = p.hit.Run
		p.run.Cached = true
		p.findings = p.hit.Findings
	}

	// Recombine in config order so cached and fresh tools report alike.
	runs := make([]adapter.Run, 0, len(plans))
	var all []finding.Finding
	for _, p := range plans {
		runs = append(runs, p.run)
		all = append(all, p.findings...)
	}
	merged := aggregate.Dedupe(all)
	aggregate.Sort(merged)

	result.Decision = policy.NewEngine(cfg, rules).Evaluate(merged, runs, r.Scope)
	result.Duration = time.Since(result.StartedAt)

	logger.Debug("gate finished",
		"outcome", string(result.Decision.Outcome),
		"findings", len(result.Decision.Findings),
		"blocking", len(result.Decision.Blocking),
		"duration", result.Duration.String())
	return result, nil
}

// openCache returns the result cache store, or nil when caching is off or
// the store cannot be opened. A broken cache degrades to fresh runs, it
// never fails the gate.
func (r *Runner) openCache(logger *log.Logger) *cache.Store {
	if r.NoCache || !r.Config.Cache.Enabled {
		return nil
	}
	store, err := cache.Open(r.Config.Cache.Path)
	if err != nil {
		logger.Warn("result cache unavailable", "path", r.Config.Cache.Path, "error", err.Error())
		return nil
	}
	return store
}

// consultCache assigns each plan its key and marks hits. Key or lookup
// failures leave the plan uncached.
func (r *Runner) consultCache(store *cache.Store, plans []*toolPlan, targets []string, logger *log.Logger) {
	keyer, err := cache.NewKeyer(targets, r.Config.Exclude)
	if err != nil {
		logger.Warn("result cache skipped for this run", "error", err.Error())
		return
	}

	for _, p := range plans {
		key, err := keyer.Key(p.tool)
		if err != nil {
			logger.Warn("result cache skipped for tool", "tool", p.tool.Name, "error", err.Error())
			continue
		}
		p.key = key

		entry, found, err := store.Get(key)
		if err != nil {
			logger.Warn("cache entry unreadable", "tool", p.tool.Name, "error", err.Error())
			continue
		}
		if !found {
			continue
		}
		p.hit = entry
		logger.Debug("cache hit", "tool", p.tool.Name, "findings", len(entry.Findings))
	}
}
