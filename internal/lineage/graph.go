package lineage

import "sort"

// Build constructs a weighted DAG from task timing data and a dependency
// edge list. The weight of each edge is denormalized from the duration of
// its source task: if taskA takes 10 seconds and an edge (taskA, taskB)
// exists, that edge carries 10 seconds of weight.
//
// Every edge endpoint must reference a key present in nodes; that is the
// adapter's contract and is not re-validated here. If the resulting graph
// contains a cycle, Build fails with a *CycleError and returns no graph.
func Build(nodes map[string]NodeTiming, edges []EdgeKey) (*Graph, error) {
	g := newGraph()

	for id, timing := range nodes {
		g.Nodes[id] = &Node{
			ID:        id,
			StartTime: timing.StartTime,
			EndTime:   timing.EndTime,
			Weight:    timing.Weight,
		}
	}

	for _, e := range edges {
		g.addEdge(e[0], e[1], g.Nodes[e[0]].Weight)
	}
	g.sortAdjacency()

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}

	return g, nil
}

func newGraph() *Graph {
	return &Graph{
		Nodes:  make(map[string]*Node),
		Edges:  make(map[EdgeKey]*Edge),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}
}

// addEdge inserts the edge if absent. Duplicate edges collapse into one,
// keeping the adjacency lists free of repeats.
func (g *Graph) addEdge(source, target string, weight float64) {
	key := EdgeKey{source, target}
	if _, ok := g.Edges[key]; ok {
		return
	}
	g.Edges[key] = &Edge{Source: source, Target: target, Weight: weight}
	g.Adj[source] = append(g.Adj[source], target)
	g.RevAdj[target] = append(g.RevAdj[target], source)
}

// removeEdge deletes the edge and its adjacency entries. Reports whether
// the edge existed.
func (g *Graph) removeEdge(source, target string) bool {
	key := EdgeKey{source, target}
	if _, ok := g.Edges[key]; !ok {
		return false
	}
	delete(g.Edges, key)
	g.Adj[source] = remove(g.Adj[source], target)
	g.RevAdj[target] = remove(g.RevAdj[target], source)
	return true
}

// removeNode deletes the node together with every incident edge, incoming
// and outgoing. Reports whether the node existed.
func (g *Graph) removeNode(id string) bool {
	if _, ok := g.Nodes[id]; !ok {
		return false
	}
	for _, target := range append([]string(nil), g.Adj[id]...) {
		g.removeEdge(id, target)
	}
	for _, source := range append([]string(nil), g.RevAdj[id]...) {
		g.removeEdge(source, id)
	}
	delete(g.Adj, id)
	delete(g.RevAdj, id)
	delete(g.Nodes, id)
	return true
}

func remove(list []string, id string) []string {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// resyncEdgeWeights is a full pass over all edges setting each edge's
// weight to its source node's current weight. Run after any mutation that
// can change node weights, so edges untouched by a batch still honor the
// invariant edge.weight == source.weight.
func (g *Graph) resyncEdgeWeights() {
	for _, e := range g.Edges {
		e.Weight = g.Nodes[e.Source].Weight
	}
}

// sortAdjacency sorts adjacency lists for deterministic ordering.
func (g *Graph) sortAdjacency() {
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}
}

// NodeCount returns the number of tasks in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// NodeIDs returns all node ids in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgeWeight returns the weight of the (source, target) edge, or 0 if the
// edge does not exist.
func (g *Graph) EdgeWeight(source, target string) float64 {
	if e, ok := g.Edges[EdgeKey{source, target}]; ok {
		return e.Weight
	}
	return 0
}

// Clone returns a deep copy of the graph. Derived attributes on nodes are
// copied as well, so the clone can be mutated as simulation scratch space
// without touching the original.
func (g *Graph) Clone() *Graph {
	c := newGraph()
	for id, n := range g.Nodes {
		cp := *n
		if n.PotentialOptimisation != nil {
			v := *n.PotentialOptimisation
			cp.PotentialOptimisation = &v
		}
		cp.NextLongestPath = append([]string(nil), n.NextLongestPath...)
		c.Nodes[id] = &cp
	}
	for key, e := range g.Edges {
		cp := *e
		c.Edges[key] = &cp
	}
	for k, v := range g.Adj {
		c.Adj[k] = append([]string(nil), v...)
	}
	for k, v := range g.RevAdj {
		c.RevAdj[k] = append([]string(nil), v...)
	}
	return c
}

// Ancestors returns the set of all nodes with a directed path to id,
// excluding id itself.
func (g *Graph) Ancestors(id string) map[string]bool {
	seen := make(map[string]bool)
	stack := append([]string(nil), g.RevAdj[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, g.RevAdj[cur]...)
	}
	return seen
}

// Subgraph induces a new graph over exactly the given node set. Edges
// between included nodes are carried over with their current weights.
func (g *Graph) Subgraph(ids map[string]bool) *Graph {
	sub := newGraph()
	for id := range ids {
		if n, ok := g.Nodes[id]; ok {
			cp := *n
			sub.Nodes[id] = &cp
		}
	}
	for _, e := range g.Edges {
		if ids[e.Source] && ids[e.Target] {
			sub.addEdge(e.Source, e.Target, e.Weight)
		}
	}
	sub.sortAdjacency()
	return sub
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is
// acyclic. Uses DFS with coloring: white (unvisited), gray (in progress),
// black (done).
func (g *Graph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				// Found a cycle — reconstruct it
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				// Reverse to get forward order
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	// Sort keys for deterministic detection
	for _, id := range g.NodeIDs() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
