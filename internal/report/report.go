// Package report renders the result of a critical-path analysis for
// terminal and machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/borjavb/slatraker/internal/cpm"
	"github.com/borjavb/slatraker/internal/ui"
)

// Reporter formats a finished analysis.
type Reporter struct {
	Analysis *cpm.Analysis
}

// New creates a Reporter for the given analysis.
func New(a *cpm.Analysis) *Reporter {
	return &Reporter{Analysis: a}
}

// PrintTable writes a terminal table of every critical-path node: its
// execution window, duration, and the estimator's annotations when present.
func (r *Reporter) PrintTable(w io.Writer) {
	a := r.Analysis

	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("⚡ Critical path to"), ui.BoldMagenta(a.Target))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════════════"))
	fmt.Fprintf(w, "Tasks:     %d of %d upstream\n", len(a.CriticalPath), a.Subgraph.NodeCount())
	fmt.Fprintf(w, "Duration:  %s\n\n", ui.Bold(formatSeconds(a.TotalDuration)))

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
		ui.BoldWhite("entity"), ui.BoldWhite("start_time"), ui.BoldWhite("end_time"),
		ui.BoldWhite("duration"), ui.BoldWhite("potential_optimisation"), ui.BoldWhite("next_longest_path"))

	for _, id := range a.CriticalPath {
		node := a.Subgraph.Nodes[id]

		saved := ui.Dim("-")
		if node.PotentialOptimisation != nil {
			saved = ui.Green(formatSeconds(*node.PotentialOptimisation))
		}
		next := ui.Dim("-")
		if len(node.NextLongestPath) > 0 {
			next = strings.Join(node.NextLongestPath, " → ")
		}

		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			ui.BoldMagenta(id),
			node.StartTime.Format("15:04:05"),
			node.EndTime.Format("15:04:05"),
			formatSeconds(node.Weight),
			saved,
			next)
	}
	tw.Flush()
}

// JSON returns a machine-readable rendering of the analysis.
func (r *Reporter) JSON() ([]byte, error) {
	type pathNode struct {
		Entity                string   `json:"entity"`
		StartTime             string   `json:"start_time"`
		EndTime               string   `json:"end_time"`
		Duration              float64  `json:"duration"`
		PotentialOptimisation *float64 `json:"potential_optimisation,omitempty"`
		NextLongestPath       []string `json:"next_longest_path,omitempty"`
	}

	type output struct {
		Target        string     `json:"target"`
		TotalDuration float64    `json:"total_duration"`
		CriticalPath  []string   `json:"critical_path"`
		Nodes         []pathNode `json:"nodes"`
	}

	a := r.Analysis
	o := output{
		Target:        a.Target,
		TotalDuration: a.TotalDuration,
		CriticalPath:  a.CriticalPath,
	}

	for _, id := range a.CriticalPath {
		node := a.Subgraph.Nodes[id]
		o.Nodes = append(o.Nodes, pathNode{
			Entity:                id,
			StartTime:             node.StartTime.Format(time.RFC3339),
			EndTime:               node.EndTime.Format(time.RFC3339),
			Duration:              node.Weight,
			PotentialOptimisation: node.PotentialOptimisation,
			NextLongestPath:       node.NextLongestPath,
		})
	}

	return json.MarshalIndent(o, "", "  ")
}

// formatSeconds renders a second count compactly, keeping sub-second
// precision when present.
func formatSeconds(s float64) string {
	if s == float64(int64(s)) {
		return fmt.Sprintf("%ds", int64(s))
	}
	return fmt.Sprintf("%.2fs", s)
}
