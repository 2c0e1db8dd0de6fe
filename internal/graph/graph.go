package graph

import (
	"github.com/joshharrison/reflow/internal/schedule"
)

// Build constructs a WorkOrderGraph from the work order set. Every
// dependency must name a work order in the set; a dangling parent id is
// a DANGLING_DEPENDENCY error naming the edge. Duplicate parent ids are
// deduplicated; self-edges survive into cycle detection.
func Build(wos []*schedule.WorkOrder) (*WorkOrderGraph, error) {
	g := &WorkOrderGraph{
		Nodes: make(map[string]*Node, len(wos)),
		Order: make([]string, 0, len(wos)),
	}

	for i, wo := range wos {
		g.Nodes[wo.ID] = &Node{WorkOrder: wo, Index: i}
		g.Order = append(g.Order, wo.ID)
	}

	for _, id := range g.Order {
		node := g.Nodes[id]
		seen := make(map[string]bool, len(node.WorkOrder.DependsOn))
		for _, parentID := range node.WorkOrder.DependsOn {
			parent, ok := g.Nodes[parentID]
			if !ok {
				return nil, schedule.NewError(schedule.ErrDanglingDependency,
					"work order "+id+" depends on unknown work order "+parentID, id, parentID)
			}
			if seen[parentID] {
				continue
			}
			seen[parentID] = true
			node.Parents = append(node.Parents, parentID)
			parent.Children = append(parent.Children, id)
		}
	}

	for _, id := range g.Order {
		node := g.Nodes[id]
		if len(node.Parents) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(node.Children) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	return g, nil
}

// DetectCycle returns a cycle path if one exists, or nil for a DAG.
// Three-color DFS over parent edges: a gray neighbor closes a cycle and
// the current path is reconstructed. Every component is examined, in
// input order for determinism.
func (g *WorkOrderGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.Nodes))
	via := make(map[string]string, len(g.Nodes))

	var dfs func(id string) []string
	dfs = func(id string) []string {
		color[id] = gray
		for _, parent := range g.Nodes[id].Parents {
			if color[parent] == gray {
				cycle := []string{parent, id}
				cur := id
				for cur != parent {
					cur = via[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[parent] == white {
				via[parent] = id
				if cycle := dfs(parent); cycle != nil {
					return cycle
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.Order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TopoSort returns the work orders in dependency order using Kahn's
// algorithm. Ties break on input order: zero-indegree nodes seed the
// queue as they appear in the input, and newly-freed children append in
// edge order. A short result means a cycle, which is a hard failure even
// though DetectCycle reports it with a better path.
func (g *WorkOrderGraph) TopoSort() ([]*schedule.WorkOrder, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for _, id := range g.Order {
		inDegree[id] = len(g.Nodes[id].Parents)
	}

	var queue []string
	for _, id := range g.Order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]*schedule.WorkOrder, 0, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, g.Nodes[id].WorkOrder)

		for _, child := range g.Nodes[id].Children {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(sorted) != len(g.Nodes) {
		cycle := g.DetectCycle()
		err := schedule.NewError(schedule.ErrCircularDependency,
			"dependency cycle prevents scheduling", cycle...)
		return nil, err
	}

	return sorted, nil
}
