package lineage

import (
	"errors"
	"testing"
	"time"
)

// ts parses a clock time on a fixed day, matching the corrections layout.
func ts(t *testing.T, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse(TimestampLayout, "2024-03-01T"+clock)
	if err != nil {
		t.Fatalf("parse %q: %v", clock, err)
	}
	return parsed
}

// timing builds a NodeTiming spanning the two clock times.
func timing(t *testing.T, start, end string) NodeTiming {
	t.Helper()
	s, e := ts(t, start), ts(t, end)
	return NodeTiming{StartTime: s, EndTime: e, Weight: e.Sub(s).Seconds()}
}

// buildTestGraph builds a graph and fails the test on error.
func buildTestGraph(t *testing.T, nodes map[string]NodeTiming, edges []EdgeKey) *Graph {
	t.Helper()
	g, err := Build(nodes, edges)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestBuild_EdgeWeightsMirrorSource(t *testing.T) {
	// a(10s) -> b(15s) -> c(5s), a -> c
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:25"),
		"c": timing(t, "00:00:25", "00:00:30"),
	}
	g := buildTestGraph(t, nodes, []EdgeKey{{"a", "b"}, {"b", "c"}, {"a", "c"}})

	if got := g.EdgeWeight("a", "b"); got != 10 {
		t.Errorf("edge a->b weight = %v, want 10", got)
	}
	if got := g.EdgeWeight("a", "c"); got != 10 {
		t.Errorf("edge a->c weight = %v, want 10", got)
	}
	if got := g.EdgeWeight("b", "c"); got != 15 {
		t.Errorf("edge b->c weight = %v, want 15", got)
	}
}

func TestBuild_CycleFails(t *testing.T) {
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:20"),
	}
	g, err := Build(nodes, []EdgeKey{{"a", "b"}, {"b", "a"}})
	if g != nil {
		t.Fatal("expected no graph on cycle")
	}
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Cycle) == 0 {
		t.Error("expected the cycle path to be reported")
	}
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:20"),
	}
	g := buildTestGraph(t, nodes, []EdgeKey{{"a", "b"}, {"a", "b"}})

	if len(g.Edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(g.Edges))
	}
	if len(g.Adj["a"]) != 1 {
		t.Errorf("expected 1 adjacency entry, got %v", g.Adj["a"])
	}
}

func TestAncestors(t *testing.T) {
	// a -> b -> d, c -> d, d -> e, x isolated
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:01"),
		"b": timing(t, "00:00:01", "00:00:02"),
		"c": timing(t, "00:00:00", "00:00:03"),
		"d": timing(t, "00:00:03", "00:00:04"),
		"e": timing(t, "00:00:04", "00:00:05"),
		"x": timing(t, "00:00:00", "00:00:09"),
	}
	g := buildTestGraph(t, nodes, []EdgeKey{{"a", "b"}, {"b", "d"}, {"c", "d"}, {"d", "e"}})

	anc := g.Ancestors("d")
	for _, want := range []string{"a", "b", "c"} {
		if !anc[want] {
			t.Errorf("expected %s in ancestors of d, got %v", want, anc)
		}
	}
	for _, not := range []string{"d", "e", "x"} {
		if anc[not] {
			t.Errorf("did not expect %s in ancestors of d", not)
		}
	}
}

func TestSubgraph_CarriesOnlyInducedEdges(t *testing.T) {
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:20"),
		"c": timing(t, "00:00:20", "00:00:30"),
	}
	g := buildTestGraph(t, nodes, []EdgeKey{{"a", "b"}, {"b", "c"}})

	sub := g.Subgraph(map[string]bool{"a": true, "b": true})
	if sub.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if len(sub.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(sub.Edges))
	}
	if got := sub.EdgeWeight("a", "b"); got != 10 {
		t.Errorf("edge a->b weight = %v, want 10", got)
	}
}

func TestClone_IsIsolated(t *testing.T) {
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:20"),
	}
	g := buildTestGraph(t, nodes, []EdgeKey{{"a", "b"}})

	c := g.Clone()
	c.Nodes["a"].Weight = 0
	c.Edges[EdgeKey{"a", "b"}].Weight = 0
	c.removeNode("b")

	if g.Nodes["a"].Weight != 10 {
		t.Errorf("original node weight mutated: %v", g.Nodes["a"].Weight)
	}
	if g.EdgeWeight("a", "b") != 10 {
		t.Errorf("original edge weight mutated: %v", g.EdgeWeight("a", "b"))
	}
	if _, ok := g.Nodes["b"]; !ok {
		t.Error("original lost node b")
	}
}

func TestRemoveNode_DropsIncidentEdges(t *testing.T) {
	nodes := map[string]NodeTiming{
		"a": timing(t, "00:00:00", "00:00:10"),
		"b": timing(t, "00:00:10", "00:00:20"),
		"c": timing(t, "00:00:20", "00:00:30"),
	}
	g := buildTestGraph(t, nodes, []EdgeKey{{"a", "b"}, {"b", "c"}})

	if !g.removeNode("b") {
		t.Fatal("expected node b to be removed")
	}
	if len(g.Edges) != 0 {
		t.Errorf("expected all incident edges gone, got %v", g.Edges)
	}
	if len(g.Adj["a"]) != 0 {
		t.Errorf("stale adjacency for a: %v", g.Adj["a"])
	}
	if g.removeNode("b") {
		t.Error("removing a missing node should report false")
	}
}
