// Package validate proves a schedule satisfies every hard constraint.
// It runs after the reflow engine has placed work and reports every
// violation it finds; the engine treats a non-empty list as fatal.
package validate

import (
	"fmt"
	"time"

	"github.com/joshharrison/reflow/internal/graph"
	"github.com/joshharrison/reflow/internal/schedule"
	"github.com/joshharrison/reflow/internal/shiftcal"
)

// Check returns every constraint violation in the work order set. An
// empty result means the schedule is valid.
func Check(wos []*schedule.WorkOrder, wcs []*schedule.WorkCenter) schedule.Errors {
	var errs schedule.Errors

	byID := schedule.WorkOrderByID(wos)
	wcByID := schedule.WorkCenterByID(wcs)

	// Cycle re-check on the mutated set.
	if g, err := graph.Build(wos); err != nil {
		if serr, ok := err.(*schedule.Error); ok {
			errs = append(errs, serr)
		} else {
			errs = append(errs, schedule.Errorf(schedule.ErrDanglingDependency, "build graph: %v", err))
		}
	} else if cycle := g.DetectCycle(); cycle != nil {
		errs = append(errs, schedule.NewError(schedule.ErrCircularDependency,
			"dependency cycle detected", cycle...))
	}

	// Dependency satisfaction: a parent ending exactly at the child's
	// start is legal; ending after it is not.
	for _, wo := range wos {
		for _, parentID := range wo.DependsOn {
			parent, ok := byID[parentID]
			if !ok {
				continue // reported by the graph build above
			}
			if parent.End.After(wo.Start) {
				errs = append(errs, schedule.NewError(schedule.ErrDependencyViolation,
					fmt.Sprintf("work order %s starts at %s before dependency %s ends at %s",
						wo.ID, fmtT(wo.Start), parent.ID, fmtT(parent.End)),
					wo.ID, parent.ID))
			}
		}
	}

	// Work center conflicts: pairwise half-open overlap on the same WC.
	// TODO: replace with a sweep line if inputs grow past a few thousand.
	byWC := make(map[string][]*schedule.WorkOrder)
	for _, wo := range wos {
		byWC[wo.WorkCenterID] = append(byWC[wo.WorkCenterID], wo)
	}
	for _, group := range byWC {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if shiftcal.Overlaps(a.Start, a.End, b.Start, b.End) {
					errs = append(errs, schedule.NewError(schedule.ErrWorkCenterConflict,
						fmt.Sprintf("work orders %s and %s overlap on work center %s", a.ID, b.ID, a.WorkCenterID),
						a.ID, b.ID))
				}
			}
		}
	}

	// Shift containment. Only the start instant is checked here: the end
	// is derived by shift-aware arithmetic, which cannot place working
	// time outside a shift.
	for _, wo := range wos {
		wc, ok := wcByID[wo.WorkCenterID]
		if !ok {
			errs = append(errs, schedule.NewError(schedule.ErrShiftViolation,
				fmt.Sprintf("work order %s references unknown work center %s", wo.ID, wo.WorkCenterID),
				wo.ID))
			continue
		}
		cal := shiftcal.New(wc.Shifts)
		if cal.Empty() {
			errs = append(errs, schedule.NewError(schedule.ErrShiftViolation,
				fmt.Sprintf("work center %s has no shifts for work order %s", wc.ID, wo.ID),
				wo.ID))
			continue
		}
		if !cal.WithinShift(wo.Start) {
			errs = append(errs, schedule.NewError(schedule.ErrShiftViolation,
				fmt.Sprintf("work order %s starts at %s outside any shift", wo.ID, fmtT(wo.Start)),
				wo.ID))
		}
		if shiftcal.OverlapsMaintenance(wo.Start, wo.End, wc.MaintenanceWindows) {
			errs = append(errs, schedule.NewError(schedule.ErrMaintenanceConflict,
				fmt.Sprintf("work order %s overlaps a maintenance window on work center %s", wo.ID, wc.ID),
				wo.ID))
		}
	}

	return errs
}

func fmtT(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
