// Package report assembles reflow metrics and renders the human-facing
// run summary.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/joshharrison/reflow/internal/schedule"
	"github.com/joshharrison/reflow/internal/ui"
)

// BuildMetrics computes delay totals and per-work-center utilization.
// Only positive delays accumulate into TotalDelayMinutes; a change that
// moved work earlier still counts toward WorkOrdersAffected.
func BuildMetrics(wos []*schedule.WorkOrder, wcs []*schedule.WorkCenter, changes []schedule.Change) schedule.Metrics {
	total := 0
	for _, c := range changes {
		if c.DelayMinutes > 0 {
			total += c.DelayMinutes
		}
	}

	util := make(map[string]float64, len(wcs))
	loadByWC := make(map[string]int)
	for _, wo := range wos {
		loadByWC[wo.WorkCenterID] += wo.DurationMinutes
	}
	for _, wc := range wcs {
		capacity := 0
		for _, s := range wc.Shifts {
			capacity += (s.EndHour - s.StartHour) * 60
		}
		if capacity == 0 {
			util[wc.ID] = 0
			continue
		}
		pct := 100 * float64(loadByWC[wc.ID]) / float64(capacity)
		util[wc.ID] = math.Round(pct*100) / 100
	}

	return schedule.Metrics{
		TotalDelayMinutes:     total,
		WorkOrdersAffected:    len(changes),
		WorkCenterUtilization: util,
	}
}

// Explanation renders the one-line textual outcome.
func Explanation(changes []schedule.Change, m schedule.Metrics) string {
	if len(changes) == 0 {
		return "No changes needed"
	}
	avg := m.TotalDelayMinutes / len(changes)
	return fmt.Sprintf("Rescheduled %d work order(s). Total delay: %d minutes. Average delay: %d minutes.",
		len(changes), m.TotalDelayMinutes, avg)
}

// PrintSummary writes a terminal-friendly run summary: the explanation,
// every change with its delay, and per-work-center utilization.
func PrintSummary(w io.Writer, res *schedule.Result) {
	fmt.Fprintf(w, "\n%s %s\n\n", ui.BoldCyan("Reflow:"), res.Explanation)

	for _, c := range res.Changes {
		arrow := fmt.Sprintf("%s → %s", fmtRange(c.OriginalStart, c.OriginalEnd), fmtRange(c.NewStart, c.NewEnd))
		fmt.Fprintf(w, "  %s %s %s %s %s\n",
			ui.DelayIcon(c.DelayMinutes),
			ui.Bold(c.WorkOrderNumber),
			arrow,
			ui.DelayLabel(c.DelayMinutes),
			ui.Dim(c.Reason))
	}
	if len(res.Changes) > 0 {
		fmt.Fprintln(w)
	}

	if len(res.Metrics.WorkCenterUtilization) > 0 {
		fmt.Fprintf(w, "  %s\n", ui.Bold("Work center utilization"))
		for _, wcID := range sortedKeys(res.Metrics.WorkCenterUtilization) {
			fmt.Fprintf(w, "    %-20s %6.2f%%\n", wcID, res.Metrics.WorkCenterUtilization[wcID])
		}
	}
}

func fmtRange(start, end time.Time) string {
	return fmt.Sprintf("[%s, %s)", start.UTC().Format("2006-01-02 15:04"), end.UTC().Format("2006-01-02 15:04"))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
