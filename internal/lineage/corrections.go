package lineage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the fixed format for timestamps in correction files
// and CSV runtime files.
const TimestampLayout = "2006-01-02T15:04:05"

// Corrections is an ordered batch of manual graph edits, loaded from a
// corrections.json file. All keys are optional; absence means no
// operations of that kind.
type Corrections struct {
	NodesDelete []NodeDelete `json:"nodes_delete"`
	NodesAdd    []NodeUpsert `json:"nodes_add"`
	EdgesDelete []EdgeRef    `json:"edges_delete"`
	EdgesAdd    []EdgeRef    `json:"edges_add"`
}

// NodeDelete names a task to remove together with all its incident edges.
type NodeDelete struct {
	TaskID string `json:"task_id"`
}

// NodeUpsert adds a task or replaces an existing one with new timings.
type NodeUpsert struct {
	TaskID      string `json:"task_id"`
	TaskStartTS string `json:"task_start_ts"`
	TaskEndTS   string `json:"task_end_ts"`
}

// EdgeRef names a dependency edge by its endpoints. Entries with an empty
// source or target are treated as no-op placeholders and skipped.
type EdgeRef struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ParseCorrections decodes a corrections.json document.
func ParseCorrections(data []byte) (*Corrections, error) {
	var c Corrections
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corrections: %w", err)
	}
	return &c, nil
}

// Apply rewrites the graph according to the correction batch. Steps run in
// a fixed order because later steps depend on earlier ones being complete:
// node deletes, node upserts, edge deletes, edge adds, a full edge-weight
// resync, then an acyclicity re-check.
//
// The batch is atomic: it is applied to a private clone and committed onto
// the receiver only once the resync and cycle check pass. On error the
// receiver is left exactly as it was.
//
// Deleting a node or edge that does not exist is a hard error. Edge
// entries with an empty source or target are silently skipped.
func (g *Graph) Apply(c *Corrections) error {
	w := g.Clone()

	for _, del := range c.NodesDelete {
		if !w.removeNode(del.TaskID) {
			return &NotFoundError{Kind: "node", ID: del.TaskID}
		}
	}

	for _, up := range c.NodesAdd {
		start, err := time.Parse(TimestampLayout, strings.TrimSpace(up.TaskStartTS))
		if err != nil {
			return &TimestampParseError{Field: "task_start_ts", Value: up.TaskStartTS, Err: err}
		}
		end, err := time.Parse(TimestampLayout, strings.TrimSpace(up.TaskEndTS))
		if err != nil {
			return &TimestampParseError{Field: "task_end_ts", Value: up.TaskEndTS, Err: err}
		}
		w.Nodes[up.TaskID] = &Node{
			ID:        up.TaskID,
			StartTime: start,
			EndTime:   end,
			Weight:    end.Sub(start).Seconds(),
		}
	}

	for _, del := range c.EdgesDelete {
		if del.Source == "" || del.Target == "" {
			continue
		}
		if !w.removeEdge(del.Source, del.Target) {
			return &NotFoundError{Kind: "edge", ID: del.Source + " -> " + del.Target}
		}
	}

	for _, add := range c.EdgesAdd {
		if add.Source == "" || add.Target == "" {
			continue
		}
		// No edge may exist without both endpoint nodes.
		if _, ok := w.Nodes[add.Source]; !ok {
			return &NotFoundError{Kind: "node", ID: add.Source}
		}
		if _, ok := w.Nodes[add.Target]; !ok {
			return &NotFoundError{Kind: "node", ID: add.Target}
		}
		// weight is settled by the resync pass below
		w.addEdge(add.Source, add.Target, 0)
	}
	w.sortAdjacency()

	w.resyncEdgeWeights()

	if cycle := w.DetectCycle(); cycle != nil {
		return &CycleError{Cycle: cycle}
	}

	g.Nodes = w.Nodes
	g.Edges = w.Edges
	g.Adj = w.Adj
	g.RevAdj = w.RevAdj
	return nil
}
