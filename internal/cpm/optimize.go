package cpm

import "github.com/borjavb/slatraker/internal/lineage"

// EstimateOptimisations simulates, for every node on the critical path,
// what the longest path would become if that node's cost were eliminated.
// Each trial runs on an isolated copy of the analysis subgraph: the
// candidate node's weight is zeroed along with all of its outgoing edge
// weights, modeling its output being available instantly, and the longest
// path is recomputed over the modified copy.
//
// Every critical-path node on the analysis subgraph is annotated with
// PotentialOptimisation (estimated seconds saved end-to-end) and
// NextLongestPath (the path that would become critical in that
// hypothetical). The estimate is a single-node heuristic, not a true
// what-if schedule. Trials are independent of each other, so iteration
// order does not affect the result.
func EstimateOptimisations(a *Analysis) {
	total := a.TotalDuration

	for _, current := range a.CriticalPath {
		trial := a.Subgraph.Clone()
		trial.Nodes[current].Weight = 0
		for _, succ := range trial.Adj[current] {
			trial.Edges[lineage.EdgeKey{current, succ}].Weight = 0
		}

		// The node set is unchanged, so the analysis topo order still holds.
		nextPath := longestPath(trial, a.TopoOrder)

		subtotal := 0.0
		for _, id := range nextPath {
			subtotal += trial.Nodes[id].Weight
		}

		// Zeroing the edges into the target can drop the target off the
		// winning path entirely, degenerating the "longest path" to an
		// upstream fragment. Correct for the lost terminal contribution by
		// adding the target's weight from the trial copy.
		if !contains(nextPath, a.Target) {
			subtotal += trial.Nodes[a.Target].Weight
		}

		saved := total - subtotal
		node := a.Subgraph.Nodes[current]
		node.PotentialOptimisation = &saved
		node.NextLongestPath = nextPath
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
