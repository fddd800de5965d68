package lineage

import "time"

// Node represents a single pipeline task with its recorded execution window.
type Node struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Weight    float64   `json:"weight"` // duration in seconds, end - start

	// Populated by the optimization estimator, only for nodes on a
	// computed critical path.
	PotentialOptimisation *float64 `json:"potential_optimisation,omitempty"`
	NextLongestPath       []string `json:"next_longest_path,omitempty"`
}

// EdgeKey identifies a dependency edge as (source, target).
type EdgeKey [2]string

// Edge represents a dependency: Target consumes Source's output.
// Weight is always denormalized from the source node's current weight.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is a weighted directed acyclic graph of pipeline tasks.
type Graph struct {
	Nodes  map[string]*Node
	Edges  map[EdgeKey]*Edge
	Adj    map[string][]string // task -> tasks that consume its output
	RevAdj map[string][]string // task -> tasks it depends on
}

// NodeTiming is the timing record adapters hand to Build for one task.
type NodeTiming struct {
	StartTime time.Time
	EndTime   time.Time
	Weight    float64 // seconds, already derived by the adapter
}
