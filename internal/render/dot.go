// Package render emits graphviz DOT renderings of an annotated lineage
// subgraph: a gantt-style timeline aligned on an interval axis, and a
// plain dependency digraph with the critical path highlighted.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/borjavb/slatraker/internal/lineage"
)

// intervalSeconds is the width of one timeline block.
const intervalSeconds = 1

// avoidOverlap shifts each task's end block left by one so tasks whose end
// and start share a block don't stack on top of each other. This shifts
// the rendered runtimes by one block but reads much better.
const avoidOverlap = true

// criticalFill and defaultFill are graphviz color-scheme references for
// task clusters on and off the critical path.
const (
	criticalFill = "/set39/8"
	defaultFill  = "/spectral3/3"
)

// Timeline renders the subgraph as an aligned timeline in DOT, one cluster
// per task spanning its start/end interval, following the rank trick from
// the classic graphviz gantt recipe: a chain of interval nodes forms the
// axis, and each task contributes an invisible start/end node pair ranked
// against the axis blocks its execution window covers. Clusters on the
// critical path get the highlight fill.
func Timeline(g *lineage.Graph, criticalPath []string) string {
	var b strings.Builder

	b.WriteString("digraph G {\n")
	b.WriteString("  newrank=true;\n")
	b.WriteString("  compound=true;\n")
	b.WriteString("  overlap=false;\n")
	b.WriteString("  pad=0.5;\n")
	b.WriteString("  ranksep=equally;\n")
	b.WriteString("  nodesep=0.5;\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=plaintext];\n\n")

	startTimeline, endTimeline := timelineBounds(g)

	// Axis: one node per interval block, chained left to right.
	// start --> T --> T+1 --> ... --> end
	rank := 0
	for interval := startTimeline; interval.Before(endTimeline); {
		label := interval.Add(time.Second).Format("03:04:05")
		fmt.Fprintf(&b, "  %q [label=%q, fontsize=\"50pt\"];\n", fmt.Sprint(rank), label)
		interval = interval.Add(intervalSeconds * time.Second)
		// skip the trailing edge so no empty node dangles at the end
		if interval.Before(endTimeline) {
			fmt.Fprintf(&b, "  %q -> %q;\n", fmt.Sprint(rank), fmt.Sprint(rank+1))
			rank++
		}
	}
	b.WriteString("\n")

	onPath := make(map[string]bool, len(criticalPath))
	for _, id := range criticalPath {
		onPath[id] = true
	}

	for _, id := range g.NodeIDs() {
		node := g.Nodes[id]

		startAlign := findInterval(node.StartTime, startTimeline)
		endAlign := findInterval(node.EndTime, startTimeline)
		if avoidOverlap {
			endAlign--
			if endAlign < startAlign {
				endAlign = startAlign
			}
		}

		fill := defaultFill
		if onPath[id] {
			fill = criticalFill
		}

		// Clusters in graphviz are subgraphs whose name starts with
		// cluster_. When the window fits a single block, the start node
		// doubles as the end node so the cluster stays narrow.
		nodeStart := id + "_start"
		nodeEnd := id
		fmt.Fprintf(&b, "  subgraph %q {\n", "cluster_"+id)
		b.WriteString("    style=\"rounded,filled\";\n")
		fmt.Fprintf(&b, "    fillcolor=%q;\n", fill)
		if startAlign == endAlign {
			nodeStart = nodeEnd
			fmt.Fprintf(&b, "    %q [fontsize=\"24\", label=%q];\n", nodeStart, id)
		} else {
			// invisible, or the task name shows twice within the cluster
			fmt.Fprintf(&b, "    %q [style=invis];\n", nodeEnd)
			fmt.Fprintf(&b, "    %q [fontsize=\"24\", label=%q];\n", nodeStart, id)
		}
		b.WriteString("  }\n")

		// Ranks against the axis must live outside the cluster or they
		// are not applied.
		if startAlign != endAlign {
			fmt.Fprintf(&b, "  { rank=same; %q; %q; }\n", fmt.Sprint(endAlign), nodeEnd)
		}
		fmt.Fprintf(&b, "  { rank=same; %q; %q; }\n", fmt.Sprint(startAlign), nodeStart)

		// Upstream edges attach at the start of the window; downstream
		// edges leave from the end, cluster to cluster.
		for _, upstream := range g.RevAdj[id] {
			fmt.Fprintf(&b, "  %q -> %q [ltail=%q, lhead=%q];\n",
				upstream, nodeStart, "cluster_"+upstream, "cluster_"+id)
		}
		b.WriteString("\n")
	}

	b.WriteString("}\n")
	return b.String()
}

// Dependencies renders the plain dependency digraph with critical-path
// nodes and edges highlighted.
func Dependencies(g *lineage.Graph, criticalPath []string) string {
	onPath := make(map[string]bool, len(criticalPath))
	for _, id := range criticalPath {
		onPath[id] = true
	}

	var b strings.Builder
	b.WriteString("digraph slatraker {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, id := range g.NodeIDs() {
		node := g.Nodes[id]
		label := fmt.Sprintf("%s\\n%.0fs", id, node.Weight)
		attrs := fmt.Sprintf("label=\"%s\"", label)
		if onPath[id] {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(&b, "  %q [%s];\n", id, attrs)
	}

	b.WriteString("\n")

	for _, from := range g.NodeIDs() {
		for _, to := range g.Adj[from] {
			style := ""
			if onPath[from] && onPath[to] {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(&b, "  %q -> %q%s;\n", from, to, style)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// timelineBounds returns the earliest start and latest end across the
// graph's tasks.
func timelineBounds(g *lineage.Graph) (time.Time, time.Time) {
	var start, end time.Time
	first := true
	for _, node := range g.Nodes {
		if first {
			start, end = node.StartTime, node.EndTime
			first = false
			continue
		}
		if node.StartTime.Before(start) {
			start = node.StartTime
		}
		if node.EndTime.After(end) {
			end = node.EndTime
		}
	}
	return start, end
}

// findInterval returns the relative position of the timestamp on the axis
// anchored at startTimeline.
func findInterval(ts, startTimeline time.Time) int {
	return int(ts.Sub(startTimeline).Seconds()) / intervalSeconds
}
