package cpm

import (
	"reflect"
	"testing"

	"github.com/borjavb/slatraker/internal/lineage"
)

func analyzeTestGraph(t *testing.T, g *lineage.Graph, target string) *Analysis {
	t.Helper()
	a, err := Analyze(g, target)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return a
}

func TestEstimate_TwoNodeChain(t *testing.T) {
	// a(10s) -> b(15s). Eliminating a's cost leaves [a, b] at 15s, so a
	// saves 10s; eliminating b's cost leaves the a->b edge weight, so b
	// saves 15s.
	g := buildTestGraph(t, map[string]lineage.NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:25"),
	}, []lineage.EdgeKey{{"a", "b"}})

	a := analyzeTestGraph(t, g, "b")
	EstimateOptimisations(a)

	nodeA := a.Subgraph.Nodes["a"]
	if nodeA.PotentialOptimisation == nil || *nodeA.PotentialOptimisation != 10 {
		t.Errorf("potential_optimisation[a] = %v, want 10", nodeA.PotentialOptimisation)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(nodeA.NextLongestPath, want) {
		t.Errorf("next_longest_path[a] = %v, want %v", nodeA.NextLongestPath, want)
	}

	nodeB := a.Subgraph.Nodes["b"]
	if nodeB.PotentialOptimisation == nil || *nodeB.PotentialOptimisation != 15 {
		t.Errorf("potential_optimisation[b] = %v, want 15", nodeB.PotentialOptimisation)
	}
}

func TestEstimate_RevealsParallelBranch(t *testing.T) {
	// a -> b(5s) -> d, a -> c(30s) -> d. Optimizing c should expose the
	// b branch as the next critical path.
	g := buildTestGraph(t, map[string]lineage.NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:15"),
		"c": timing(t, "00:00:10", "00:00:40"),
		"d": timing(t, "00:00:40", "00:00:50"),
	}, []lineage.EdgeKey{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}})

	a := analyzeTestGraph(t, g, "d")
	EstimateOptimisations(a)

	nodeC := a.Subgraph.Nodes["c"]
	if want := []string{"a", "b", "d"}; !reflect.DeepEqual(nodeC.NextLongestPath, want) {
		t.Errorf("next_longest_path[c] = %v, want %v", nodeC.NextLongestPath, want)
	}
	// total 50, next path a(10)+b(5)+d(10) = 25
	if nodeC.PotentialOptimisation == nil || *nodeC.PotentialOptimisation != 25 {
		t.Errorf("potential_optimisation[c] = %v, want 25", nodeC.PotentialOptimisation)
	}
}

func TestEstimate_NonNegativeOnChain(t *testing.T) {
	g := buildTestGraph(t, map[string]lineage.NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:25"),
		"c": timing(t, "00:00:25", "00:00:32"),
		"d": timing(t, "00:00:32", "00:00:45"),
	}, []lineage.EdgeKey{{"a", "b"}, {"b", "c"}, {"c", "d"}})

	a := analyzeTestGraph(t, g, "d")
	EstimateOptimisations(a)

	for _, id := range a.CriticalPath {
		node := a.Subgraph.Nodes[id]
		if node.PotentialOptimisation == nil {
			t.Fatalf("node %s missing potential_optimisation", id)
		}
		if *node.PotentialOptimisation < 0 {
			t.Errorf("potential_optimisation[%s] = %v, want >= 0", id, *node.PotentialOptimisation)
		}
	}
}

func TestEstimate_DoesNotMutateWeights(t *testing.T) {
	g := buildTestGraph(t, map[string]lineage.NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:25"),
	}, []lineage.EdgeKey{{"a", "b"}})

	a := analyzeTestGraph(t, g, "b")
	EstimateOptimisations(a)

	if a.Subgraph.Nodes["a"].Weight != 10 {
		t.Errorf("subgraph node weight mutated: %v", a.Subgraph.Nodes["a"].Weight)
	}
	if a.Subgraph.EdgeWeight("a", "b") != 10 {
		t.Errorf("subgraph edge weight mutated: %v", a.Subgraph.EdgeWeight("a", "b"))
	}
	if g.Nodes["a"].PotentialOptimisation != nil {
		t.Error("canonical graph must not gain derived attributes")
	}
}

func TestEstimate_TargetDroppedFromTrialPath(t *testing.T) {
	// A hand-built analysis whose subgraph carries a heavier side branch
	// that does not reach the target. Zeroing a's outgoing edge moves the
	// longest path onto that branch, so the target's weight has to be
	// added back to the subtotal.
	g := buildTestGraph(t, map[string]lineage.NodeTiming{
		"a": timing(t, "00:00:00", "00:00:05"),
		"t": timing(t, "00:00:05", "00:00:07"),
		"x": timing(t, "00:00:00", "00:01:40"),
		"y": timing(t, "00:01:40", "00:01:41"),
	}, []lineage.EdgeKey{{"a", "t"}, {"x", "y"}})

	order, err := topoSort(g)
	if err != nil {
		t.Fatalf("topo sort: %v", err)
	}
	a := &Analysis{
		Target:        "t",
		CriticalPath:  []string{"a", "t"},
		Subgraph:      g,
		TotalDuration: 7,
		TopoOrder:     order,
	}

	EstimateOptimisations(a)

	nodeA := a.Subgraph.Nodes["a"]
	if want := []string{"x", "y"}; !reflect.DeepEqual(nodeA.NextLongestPath, want) {
		t.Fatalf("next_longest_path[a] = %v, want %v", nodeA.NextLongestPath, want)
	}
	// subtotal = x(100) + y(1) + target correction t(2) = 103
	if nodeA.PotentialOptimisation == nil || *nodeA.PotentialOptimisation != 7-103 {
		t.Errorf("potential_optimisation[a] = %v, want %v", nodeA.PotentialOptimisation, 7-103)
	}
}
