package cpm

import "github.com/borjavb/slatraker/internal/lineage"

// Analysis holds the critical path computed for one target task.
type Analysis struct {
	Target        string
	CriticalPath  []string // ordered node ids, upstream source first
	Subgraph      *lineage.Graph
	TotalDuration float64  // seconds, sum of node weights on the path
	TopoOrder     []string // topological order of the subgraph
}
