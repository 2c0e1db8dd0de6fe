// Package reflow rewrites work order start/end times after a disruption
// so that every hard constraint holds again: dependencies complete
// before dependents start, work centers run one order at a time, work
// happens only inside shifts, and maintenance windows stay clear.
//
// The engine is greedy, not optimal: work orders are processed strictly
// in topological order, and when two unrelated orders compete for the
// same slot the one processed first wins. A single Reflow call owns all
// of its intermediate state; concurrent calls over independent inputs
// need no coordination.
package reflow

import (
	"fmt"
	"time"

	"github.com/joshharrison/reflow/internal/graph"
	"github.com/joshharrison/reflow/internal/report"
	"github.com/joshharrison/reflow/internal/schedule"
	"github.com/joshharrison/reflow/internal/shiftcal"
	"github.com/joshharrison/reflow/internal/validate"
)

// maxSlotIterations bounds the slot search per work order.
const maxSlotIterations = 1000

// occupant is a committed interval on a work center: an already-placed
// work order or an immovable maintenance work order.
type occupant struct {
	wo    *schedule.WorkOrder
	start time.Time
	end   time.Time
}

// Reflow produces a valid schedule from the input, or a structured error
// when no valid schedule can be proven. The caller's work orders are
// never mutated; updated copies come back in the result.
func Reflow(input *schedule.Input) (*schedule.Result, error) {
	wcByID := schedule.WorkCenterByID(input.WorkCenters)

	// Deep-copy the mutable set so a failed call leaves no trace.
	wos := make([]*schedule.WorkOrder, len(input.WorkOrders))
	for i, wo := range input.WorkOrders {
		wos[i] = wo.Clone()
	}

	g, err := graph.Build(wos)
	if err != nil {
		return nil, err
	}
	sorted, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	byID := schedule.WorkOrderByID(wos)
	calendars := make(map[string]*shiftcal.Calendar, len(input.WorkCenters))
	for _, wc := range input.WorkCenters {
		calendars[wc.ID] = shiftcal.New(wc.Shifts)
	}

	// Maintenance work orders are immovable and block their work center
	// from the start; movable orders join as they are placed.
	occupied := make(map[string][]occupant)
	for _, wo := range wos {
		if wo.IsMaintenance {
			occupied[wo.WorkCenterID] = append(occupied[wo.WorkCenterID],
				occupant{wo: wo, start: wo.Start, end: wo.End})
		}
	}

	var changes []schedule.Change
	for _, wo := range sorted {
		if wo.IsMaintenance {
			continue
		}

		wc := wcByID[wo.WorkCenterID]
		cal := calendars[wo.WorkCenterID]
		if wc == nil || cal.Empty() {
			// No calendar to schedule against; leave the order where it
			// is and let validation report the broken reference.
			continue
		}

		slot, err := findSlot(wo, byID, wc, cal, occupied[wo.WorkCenterID])
		if err != nil {
			return nil, err
		}

		// The end is always re-derived from the slot so the working time
		// inside [start, end) equals the order's duration even when the
		// input carried an inconsistent end.
		if !slot.start.Equal(wo.Start) || !slot.end.Equal(wo.End) {
			origStart, origEnd := wo.Start, wo.End
			wo.Start = slot.start
			wo.End = slot.end
			changes = append(changes, schedule.Change{
				WorkOrderID:     wo.ID,
				WorkOrderNumber: wo.Number,
				OriginalStart:   origStart,
				OriginalEnd:     origEnd,
				NewStart:        wo.Start,
				NewEnd:          wo.End,
				DelayMinutes:    int(wo.End.Sub(origEnd) / time.Minute),
				Reason:          slot.reason,
			})
		}
		occupied[wo.WorkCenterID] = append(occupied[wo.WorkCenterID],
			occupant{wo: wo, start: wo.Start, end: wo.End})
	}

	if errs := validate.Check(wos, input.WorkCenters); len(errs) > 0 {
		return nil, errs
	}

	metrics := report.BuildMetrics(wos, input.WorkCenters, changes)
	return &schedule.Result{
		UpdatedWorkOrders: wos,
		Changes:           changes,
		Explanation:       report.Explanation(changes, metrics),
		Metrics:           metrics,
	}, nil
}

// slot is the outcome of an earliest-start search.
type slot struct {
	start  time.Time
	end    time.Time
	reason string
}

// findSlot computes the earliest valid [start, end) for the work order:
// at or after its current start, after every dependency's end, aligned
// to a shift, and clear of both committed occupants and maintenance
// windows on its work center.
func findSlot(wo *schedule.WorkOrder, byID map[string]*schedule.WorkOrder,
	wc *schedule.WorkCenter, cal *shiftcal.Calendar, occupants []occupant) (slot, error) {

	t := wo.Start
	var depBlocker *schedule.WorkOrder
	for _, parentID := range wo.DependsOn {
		parent := byID[parentID]
		if parent != nil && parent.End.After(t) {
			t = parent.End
			depBlocker = parent
		}
	}

	var lastOccupant *schedule.WorkOrder
	var pushedByMaintenance bool

	for i := 0; i < maxSlotIterations; i++ {
		aligned, err := cal.AlignToShift(t)
		if err != nil {
			return slot{}, capError(wo, err)
		}
		end, err := cal.EndAfterWorking(aligned, wo.DurationMinutes)
		if err != nil {
			return slot{}, capError(wo, err)
		}

		// Earliest end across everything blocking [aligned, end).
		var nextFree time.Time
		blocked := false
		for _, occ := range occupants {
			if shiftcal.Overlaps(aligned, end, occ.start, occ.end) {
				blocked = true
				lastOccupant = occ.wo
				if nextFree.IsZero() || occ.end.Before(nextFree) {
					nextFree = occ.end
				}
			}
		}
		for _, w := range wc.MaintenanceWindows {
			if shiftcal.Overlaps(aligned, end, w.Start, w.End) {
				blocked = true
				pushedByMaintenance = true
				if nextFree.IsZero() || w.End.Before(nextFree) {
					nextFree = w.End
				}
			}
		}

		if !blocked {
			return slot{
				start:  aligned,
				end:    end,
				reason: buildReason(aligned, depBlocker, lastOccupant, pushedByMaintenance),
			}, nil
		}
		if nextFree.After(aligned) {
			t = nextFree
		} else {
			// No blocker end past the candidate; force progress.
			t = aligned.Add(time.Hour)
		}
	}

	return slot{}, schedule.NewError(schedule.ErrSafetyCap,
		fmt.Sprintf("no free slot found for work order %s within %d attempts", wo.ID, maxSlotIterations),
		wo.ID)
}

// buildReason names the proximate cause of a reschedule. Informational
// only; nothing downstream parses it.
func buildReason(start time.Time, dep, occ *schedule.WorkOrder, maintenance bool) string {
	switch {
	case dep != nil && dep.End.Equal(start):
		return fmt.Sprintf("waiting for dependency %s to complete at %s", dep.ID, start.UTC().Format(time.RFC3339))
	case occ != nil:
		return fmt.Sprintf("work center occupied by %s", occ.ID)
	case maintenance:
		return "pushed past a maintenance window"
	case dep != nil:
		return fmt.Sprintf("waiting for dependency %s", dep.ID)
	default:
		return "moved to the next available shift"
	}
}

func capError(wo *schedule.WorkOrder, err error) error {
	return schedule.NewError(schedule.ErrSafetyCap,
		fmt.Sprintf("scheduling work order %s: %v", wo.ID, err), wo.ID)
}
