package ingest

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/borjavb/slatraker/internal/lineage"
)

// taskResourceTypes are the manifest resource types that represent
// executable tasks. Tests are omitted: although a slow test can be a
// bottleneck too, they don't produce data other tasks consume.
var taskResourceTypes = map[string]bool{
	"model":  true,
	"seed":   true,
	"source": true,
}

// LoadDbt joins a dbt manifest with its run_results artifact to extract
// the node timings and dependency edges. The manifest contributes the node
// set (filtered to task-like resource types) and the edges via each node's
// depends_on list; run_results contributes the "execute" phase start/end
// timing per node. A node without execute timing is a hard error.
//
// The artifacts are large, loosely versioned JSON documents, so fields are
// extracted by path instead of declaring the full schema.
func LoadDbt(manifestPath, runResultsPath string) (map[string]lineage.NodeTiming, []lineage.EdgeKey, error) {
	manifest, err := readJSON(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	runResults, err := readJSON(runResultsPath)
	if err != nil {
		return nil, nil, err
	}

	// Index the execute-phase timings by unique_id.
	type window struct {
		start, end string
	}
	timings := make(map[string]window)
	runResults.Get("results").ForEach(func(_, result gjson.Result) bool {
		id := result.Get("unique_id").String()
		result.Get("timing").ForEach(func(_, timing gjson.Result) bool {
			if timing.Get("name").String() == "execute" {
				timings[id] = window{
					start: timing.Get("started_at").String(),
					end:   timing.Get("completed_at").String(),
				}
			}
			return true
		})
		return true
	})

	nodes := make(map[string]lineage.NodeTiming)
	var edges []lineage.EdgeKey
	var loadErr error

	manifest.Get("nodes").ForEach(func(_, node gjson.Result) bool {
		id := node.Get("unique_id").String()

		// Edges come from every manifest node's upstream list, mirroring
		// the artifact regardless of resource type filtering below.
		node.Get("depends_on.nodes").ForEach(func(_, source gjson.Result) bool {
			edges = append(edges, lineage.EdgeKey{source.String(), id})
			return true
		})

		if !taskResourceTypes[node.Get("resource_type").String()] {
			return true
		}

		w, ok := timings[id]
		if !ok || w.start == "" || w.end == "" {
			loadErr = &lineage.MissingTimingError{TaskID: id}
			return false
		}
		start, err := parseArtifactTime(w.start)
		if err != nil {
			loadErr = &lineage.TimestampParseError{Field: "started_at", Value: w.start, Err: err}
			return false
		}
		end, err := parseArtifactTime(w.end)
		if err != nil {
			loadErr = &lineage.TimestampParseError{Field: "completed_at", Value: w.end, Err: err}
			return false
		}
		nodes[id] = lineage.NodeTiming{
			StartTime: start,
			EndTime:   end,
			Weight:    end.Sub(start).Seconds(),
		}
		return true
	})
	if loadErr != nil {
		return nil, nil, loadErr
	}

	// Drop edges whose endpoints were filtered out (tests, macros, docs).
	kept := edges[:0]
	for _, e := range edges {
		if _, ok := nodes[e[0]]; !ok {
			continue
		}
		if _, ok := nodes[e[1]]; !ok {
			continue
		}
		kept = append(kept, e)
	}

	return nodes, kept, nil
}

// parseArtifactTime accepts the RFC3339 timestamps dbt writes (usually
// with fractional seconds and a Z suffix) and falls back to the plain
// layout used elsewhere in this tool.
func parseArtifactTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(lineage.TimestampLayout, value)
}

func readJSON(path string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("parse %s: invalid JSON", path)
	}
	return gjson.ParseBytes(data), nil
}
