package orchestrator

import (
	"time"

	"github.com/joshharrison/reflow/internal/schedule"
)

// Config controls a batch run.
type Config struct {
	MaxParallel int
	Quiet       bool
}

// ScenarioResult is the outcome of reflowing one scenario file.
type ScenarioResult struct {
	Path    string
	Result  *schedule.Result
	Err     error
	Elapsed time.Duration
}

// Summary aggregates a batch run.
type Summary struct {
	Scenarios         int
	Failed            int
	WorkOrders        int
	Changes           int
	TotalDelayMinutes int
}
