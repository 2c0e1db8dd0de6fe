package graph

import (
	"errors"
	"testing"

	"github.com/joshharrison/reflow/internal/schedule"
)

func wo(id string, deps ...string) *schedule.WorkOrder {
	return &schedule.WorkOrder{ID: id, DependsOn: deps}
}

func TestBuild_SimpleDAG(t *testing.T) {
	// a -> b -> d
	// a -> c -> d
	g, err := Build([]*schedule.WorkOrder{
		wo("a"),
		wo("b", "a"),
		wo("c", "a"),
		wo("d", "b", "c"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Count() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.Count())
	}
	if len(g.Roots) != 1 || g.Roots[0] != "a" {
		t.Errorf("expected roots=[a], got %v", g.Roots)
	}
	if len(g.Leaves) != 1 || g.Leaves[0] != "d" {
		t.Errorf("expected leaves=[d], got %v", g.Leaves)
	}
	if children := g.Nodes["a"].Children; len(children) != 2 {
		t.Errorf("expected a to have 2 children, got %v", children)
	}
	if parents := g.Nodes["d"].Parents; len(parents) != 2 {
		t.Errorf("expected d to have 2 parents, got %v", parents)
	}
}

func TestBuild_DanglingDependency(t *testing.T) {
	_, err := Build([]*schedule.WorkOrder{
		wo("a", "ghost"),
	})
	if err == nil {
		t.Fatal("expected dangling dependency error")
	}
	var serr *schedule.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *schedule.Error, got %T", err)
	}
	if serr.Code != schedule.ErrDanglingDependency {
		t.Errorf("expected DANGLING_DEPENDENCY, got %s", serr.Code)
	}
}

func TestBuild_DuplicateParentsTolerated(t *testing.T) {
	g, err := Build([]*schedule.WorkOrder{
		wo("a"),
		wo("b", "a", "a", "a"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parents := g.Nodes["b"].Parents; len(parents) != 1 {
		t.Errorf("expected duplicate parents collapsed to 1, got %v", parents)
	}
	if children := g.Nodes["a"].Children; len(children) != 1 {
		t.Errorf("expected a single child edge, got %v", children)
	}
}

func TestDetectCycle_CleanDAG(t *testing.T) {
	g, err := Build([]*schedule.WorkOrder{
		wo("a"),
		wo("b", "a"),
		wo("c", "b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestDetectCycle_TwoNodeCycle(t *testing.T) {
	g, err := Build([]*schedule.WorkOrder{
		wo("a", "b"),
		wo("b", "a"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cycle := g.DetectCycle()
	if cycle == nil {
		t.Fatal("expected a cycle")
	}
	if len(cycle) < 2 {
		t.Errorf("expected cycle of length >= 2, got %v", cycle)
	}
}

func TestDetectCycle_SelfEdge(t *testing.T) {
	g, err := Build([]*schedule.WorkOrder{
		wo("a", "a"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycle := g.DetectCycle(); cycle == nil {
		t.Fatal("expected a self-edge cycle")
	}
}

func TestTopoSort_DependenciesFirst(t *testing.T) {
	g, err := Build([]*schedule.WorkOrder{
		wo("d", "b", "c"),
		wo("b", "a"),
		wo("c", "a"),
		wo("a"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sorted, err := g.TopoSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[string]int, len(sorted))
	for i, w := range sorted {
		pos[w.ID] = i
	}
	for _, w := range sorted {
		for _, parent := range g.Nodes[w.ID].Parents {
			if pos[parent] > pos[w.ID] {
				t.Errorf("parent %s sorted after child %s", parent, w.ID)
			}
		}
	}
}

func TestTopoSort_InputOrderTieBreak(t *testing.T) {
	// Three independent work orders keep their input order, even when
	// ids would sort differently.
	g, err := Build([]*schedule.WorkOrder{
		wo("zeta"),
		wo("alpha"),
		wo("mike"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sorted, err := g.TopoSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"zeta", "alpha", "mike"}
	for i, w := range sorted {
		if w.ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, w.ID, i)
		}
	}
}

func TestTopoSort_CycleFails(t *testing.T) {
	g, err := Build([]*schedule.WorkOrder{
		wo("a", "c"),
		wo("b", "a"),
		wo("c", "b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = g.TopoSort()
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var serr *schedule.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *schedule.Error, got %T", err)
	}
	if serr.Code != schedule.ErrCircularDependency {
		t.Errorf("expected CIRCULAR_DEPENDENCY, got %s", serr.Code)
	}
	if len(serr.WorkOrderIDs) == 0 {
		t.Error("expected the cycle path in WorkOrderIDs")
	}
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Count() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.Count())
	}
	sorted, err := g.TopoSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sorted) != 0 {
		t.Errorf("expected empty sort, got %d", len(sorted))
	}
}
