package cpm

import (
	"fmt"
	"sort"

	"github.com/borjavb/slatraker/internal/lineage"
)

// Analyze finds the critical (longest) path to a target task based on the
// edge weights of the graph. To reduce the complexity of finding the
// longest path, the graph is first reduced to the target plus all of its
// upstream ancestors; the search never touches disconnected or
// downstream-only nodes.
func Analyze(g *lineage.Graph, target string) (*Analysis, error) {
	if _, ok := g.Nodes[target]; !ok {
		return nil, &lineage.NotFoundError{Kind: "node", ID: target}
	}

	closure := g.Ancestors(target)
	closure[target] = true
	sub := g.Subgraph(closure)

	order, err := topoSort(sub)
	if err != nil {
		return nil, err
	}

	path := longestPath(sub, order)

	total := 0.0
	for _, id := range path {
		total += sub.Nodes[id].Weight
	}

	return &Analysis{
		Target:        target,
		CriticalPath:  path,
		Subgraph:      sub,
		TotalDuration: total,
		TopoOrder:     order,
	}, nil
}

// topoSort performs Kahn's algorithm for topological sorting.
func topoSort(g *lineage.Graph) ([]string, error) {
	inDegree := make(map[string]int)
	for id := range g.Nodes {
		inDegree[id] = len(g.RevAdj[id])
	}

	// Start with roots (in-degree 0), sorted for determinism
	var queue []string
	for id := range g.Nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		// Pop front
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		// Reduce in-degree of successors
		var newReady []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("topological sort failed: graph has a cycle (%d of %d tasks sorted)", len(order), len(g.Nodes))
	}

	return order, nil
}

// longestPath computes the maximum-total-edge-weight path in the DAG via a
// dynamic program over the topological order. For each node, the best
// accumulated weight into it is the max over predecessors of the
// predecessor's best plus the connecting edge weight. Ties keep the first
// candidate in the deterministic scan order, so equal-weight paths resolve
// by traversal order rather than an explicit rule.
func longestPath(g *lineage.Graph, order []string) []string {
	if len(order) == 0 {
		return nil
	}

	dist := make(map[string]float64, len(order))
	pred := make(map[string]string, len(order))

	for _, id := range order {
		best := 0.0
		bestPred := ""
		for _, p := range g.RevAdj[id] {
			if cand := dist[p] + g.EdgeWeight(p, id); cand > best || bestPred == "" {
				best = cand
				bestPred = p
			}
		}
		dist[id] = best
		pred[id] = bestPred
	}

	// Endpoint is the last maximum in topological order, so an all-zero
	// tail still extends the path to the sink instead of stopping at the
	// first tied node.
	end := order[0]
	for _, id := range order[1:] {
		if dist[id] >= dist[end] {
			end = id
		}
	}

	var path []string
	for cur := end; cur != ""; cur = pred[cur] {
		path = append(path, cur)
	}
	// Reverse into source-to-end order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
