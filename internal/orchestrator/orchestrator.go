// Package orchestrator reflows many scenario files concurrently. Each
// engine call owns its state exclusively, so scenarios parallelize with
// no coordination beyond a worker cap.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joshharrison/reflow/internal/loader"
	"github.com/joshharrison/reflow/internal/reflow"
	"github.com/joshharrison/reflow/internal/ui"
)

// Orchestrator runs a batch of reflow scenarios.
type Orchestrator struct {
	Config Config
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return &Orchestrator{Config: cfg}
}

// Run reflows every scenario file, at most MaxParallel at a time.
// Results come back in input order regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context, paths []string) []ScenarioResult {
	results := make([]ScenarioResult, len(paths))
	sem := make(chan struct{}, o.Config.MaxParallel)
	var wg sync.WaitGroup

	if !o.Config.Quiet {
		fmt.Fprintf(os.Stderr, "\n%s %d scenario(s), max %d parallel\n",
			ui.BoldCyan("Batch reflow:"), len(paths), o.Config.MaxParallel)
	}

	for i, path := range paths {
		if ctx.Err() != nil {
			results[i] = ScenarioResult{Path: path, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = o.runOne(path)
		}(i, path)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) runOne(path string) ScenarioResult {
	name := filepath.Base(path)
	started := time.Now()

	input, err := loader.ReadFile(path)
	if err != nil {
		o.report(name, fmt.Sprintf("%s %v", ui.OutcomeIcon(false), err))
		return ScenarioResult{Path: path, Err: err, Elapsed: time.Since(started)}
	}

	res, err := reflow.Reflow(input)
	elapsed := time.Since(started)
	if err != nil {
		o.report(name, fmt.Sprintf("%s %v", ui.OutcomeIcon(false), err))
		return ScenarioResult{Path: path, Err: err, Elapsed: elapsed}
	}

	o.report(name, fmt.Sprintf("%s %s", ui.OutcomeIcon(true), res.Explanation))
	return ScenarioResult{Path: path, Result: res, Elapsed: elapsed}
}

func (o *Orchestrator) report(name, line string) {
	if o.Config.Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n", ui.ScenarioPrefix(name), line)
}

// Summarize folds scenario results into batch totals.
func Summarize(results []ScenarioResult) Summary {
	var s Summary
	for _, r := range results {
		s.Scenarios++
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.WorkOrders += len(r.Result.UpdatedWorkOrders)
		s.Changes += len(r.Result.Changes)
		s.TotalDelayMinutes += r.Result.Metrics.TotalDelayMinutes
	}
	return s
}
