// Package ingest turns pipeline-run artifacts into the node timing map and
// edge list the lineage builder consumes. Two sources are supported: a
// pair of delimited-text files (edge list + runtimes) and a dbt manifest /
// run_results artifact pair.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/borjavb/slatraker/internal/lineage"
)

// LoadCSV reads an edge-list file with source,target rows and a runtime
// file with task_id,start_ts,end_ts rows. Both files carry a header row
// that is skipped, timestamps use the fixed YYYY-MM-DDTHH:MM:SS layout,
// and every value is trimmed of surrounding whitespace.
func LoadCSV(edgesPath, runtimesPath string) (map[string]lineage.NodeTiming, []lineage.EdgeKey, error) {
	edgeRows, err := readRows(edgesPath)
	if err != nil {
		return nil, nil, err
	}
	runtimeRows, err := readRows(runtimesPath)
	if err != nil {
		return nil, nil, err
	}

	var edges []lineage.EdgeKey
	for i, row := range edgeRows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("%s: row %d: want source,target, got %d columns", edgesPath, i+2, len(row))
		}
		edges = append(edges, lineage.EdgeKey{strings.TrimSpace(row[0]), strings.TrimSpace(row[1])})
	}

	nodes := make(map[string]lineage.NodeTiming, len(runtimeRows))
	for i, row := range runtimeRows {
		if len(row) < 3 {
			return nil, nil, fmt.Errorf("%s: row %d: want task_id,start_ts,end_ts, got %d columns", runtimesPath, i+2, len(row))
		}
		start, err := time.Parse(lineage.TimestampLayout, strings.TrimSpace(row[1]))
		if err != nil {
			return nil, nil, &lineage.TimestampParseError{Field: "start_ts", Value: row[1], Err: err}
		}
		end, err := time.Parse(lineage.TimestampLayout, strings.TrimSpace(row[2]))
		if err != nil {
			return nil, nil, &lineage.TimestampParseError{Field: "end_ts", Value: row[2], Err: err}
		}
		nodes[strings.TrimSpace(row[0])] = lineage.NodeTiming{
			StartTime: start,
			EndTime:   end,
			Weight:    end.Sub(start).Seconds(),
		}
	}

	return nodes, edges, nil
}

// readRows reads all records from a CSV file, dropping the header row.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // column counts are validated per row
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}
