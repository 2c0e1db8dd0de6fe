// Package cpm performs critical path method analysis over the work
// order dependency graph, ignoring shifts and resources: durations are
// pure working minutes, so the result is a lower bound that names the
// bottleneck chain of the schedule.
package cpm

import (
	"sort"

	"github.com/joshharrison/reflow/internal/graph"
)

// Analyze runs forward and backward passes over the graph. A work order
// with DurationMinutes > 0 uses that as its duration; otherwise 1, so
// zero-duration orders still occupy a position in the chain.
func Analyze(g *graph.WorkOrderGraph) (*Result, error) {
	sorted, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	order := make([]string, len(sorted))
	for i, wo := range sorted {
		order[i] = wo.ID
	}

	durations := make(map[string]int, g.Count())
	for id, node := range g.Nodes {
		if node.WorkOrder.DurationMinutes > 0 {
			durations[id] = node.WorkOrder.DurationMinutes
		} else {
			durations[id] = 1
		}
	}

	result := &Result{
		WorkOrders: make(map[string]*WorkOrderSchedule, g.Count()),
		TopoOrder:  order,
	}
	for _, id := range order {
		result.WorkOrders[id] = &WorkOrderSchedule{WorkOrderID: id}
	}

	// Forward pass: ES = max EF over parents.
	for _, id := range order {
		ws := result.WorkOrders[id]
		es := 0
		for _, parent := range g.Nodes[id].Parents {
			if pf := result.WorkOrders[parent].EF; pf > es {
				es = pf
			}
		}
		ws.ES = es
		ws.EF = es + durations[id]
	}

	total := 0
	for _, ws := range result.WorkOrders {
		if ws.EF > total {
			total = ws.EF
		}
	}
	result.TotalDuration = total

	// Backward pass in reverse topological order: LF = min LS over
	// children, leaves pinned to the total duration.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ws := result.WorkOrders[id]
		children := g.Nodes[id].Children
		if len(children) == 0 {
			ws.LF = total
		} else {
			minLS := total
			for _, child := range children {
				if ls := result.WorkOrders[child].LS; ls < minLS {
					minLS = ls
				}
			}
			ws.LF = minLS
		}
		ws.LS = ws.LF - durations[id]
		ws.Slack = ws.LS - ws.ES
		ws.IsCritical = ws.Slack == 0
	}

	for _, id := range order {
		if result.WorkOrders[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}

	result.Waves = computeWaves(result)

	return result, nil
}

// computeWaves groups work orders by earliest start time.
func computeWaves(result *Result) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.WorkOrders[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		ids := esGroups[es]

		hasCritical := false
		for _, id := range ids {
			result.WorkOrders[id].Wave = i
			if result.WorkOrders[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical work orders first within a wave.
		sort.SliceStable(ids, func(a, b int) bool {
			return result.WorkOrders[ids[a]].IsCritical && !result.WorkOrders[ids[b]].IsCritical
		})

		waves[i] = Wave{Index: i, WorkOrderIDs: ids, IsCritical: hasCritical}
	}

	return waves
}
