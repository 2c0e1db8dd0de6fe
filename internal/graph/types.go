package graph

import "github.com/joshharrison/reflow/internal/schedule"

// Node is one work order's position in the dependency graph. Parents are
// the work orders that must finish before this one starts; Children are
// the reverse edges. Index is the work order's position in input order;
// tie-breaks walk WorkOrderGraph.Order, which holds the same order.
type Node struct {
	WorkOrder *schedule.WorkOrder
	Index     int
	Parents   []string
	Children  []string
}

// WorkOrderGraph is a directed acyclic graph of work orders keyed by id.
type WorkOrderGraph struct {
	Nodes  map[string]*Node
	Order  []string // ids in input order
	Roots  []string // no parents
	Leaves []string // no children
}

// Count returns the number of work orders in the graph.
func (g *WorkOrderGraph) Count() int {
	return len(g.Nodes)
}
