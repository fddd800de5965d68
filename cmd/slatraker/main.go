package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/borjavb/slatraker/internal/cpm"
	"github.com/borjavb/slatraker/internal/ingest"
	"github.com/borjavb/slatraker/internal/lineage"
	"github.com/borjavb/slatraker/internal/render"
	"github.com/borjavb/slatraker/internal/report"
	"github.com/borjavb/slatraker/internal/ui"
)

var (
	flagTarget      string
	flagEdges       string
	flagRuntimes    string
	flagManifest    string
	flagRunResults  string
	flagCorrections string
	flagJSON        bool
	flagFormat      string
	flagOutput      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "slatraker",
		Short: "Find the critical path of a pipeline run and where to optimise it",
		Long: `Slatraker builds a weighted dependency graph from pipeline timing data
(a CSV edge/runtime pair or dbt manifest/run_results artifacts), optionally
applies manual corrections, and computes the critical path to a target task
along with how much end-to-end latency each task on it could save.`,
	}

	rootCmd.PersistentFlags().StringVar(&flagTarget, "target", "", "Task to find the upstream critical path for (required)")
	rootCmd.PersistentFlags().StringVar(&flagEdges, "edges", "", "Edge list CSV (source,target)")
	rootCmd.PersistentFlags().StringVar(&flagRuntimes, "runtimes", "", "Runtimes CSV (task_id,start_ts,end_ts)")
	rootCmd.PersistentFlags().StringVar(&flagManifest, "manifest", "", "dbt manifest.json artifact")
	rootCmd.PersistentFlags().StringVar(&flagRunResults, "run-results", "", "dbt run_results.json artifact")
	rootCmd.PersistentFlags().StringVar(&flagCorrections, "corrections", "", "Corrections JSON file")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(vizCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the critical path and per-task optimisation potential",
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := runAnalysis()
			if err != nil {
				return err
			}

			r := report.New(analysis)
			if flagJSON {
				out, err := r.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			r.PrintTable(os.Stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Emit a graphviz DOT rendering of the critical-path subgraph",
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := runAnalysis()
			if err != nil {
				return err
			}

			var dot string
			switch flagFormat {
			case "timeline":
				dot = render.Timeline(analysis.Subgraph, analysis.CriticalPath)
			case "dot":
				dot = render.Dependencies(analysis.Subgraph, analysis.CriticalPath)
			default:
				return fmt.Errorf("unsupported format: %s (use timeline or dot)", flagFormat)
			}

			if flagOutput != "" {
				if err := os.WriteFile(flagOutput, []byte(dot), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", flagOutput, err)
				}
				fmt.Fprintf(os.Stderr, "%s %s\n", ui.Green("📥 Lineage delivered:"), flagOutput)
				return nil
			}

			fmt.Print(dot)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "timeline", "Output format (timeline, dot)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Write DOT to this file instead of stdout")

	return cmd
}

// runAnalysis is shared logic for the analyze and viz commands: load the
// timing data, build the graph, apply corrections, and run the critical
// path analysis plus the optimisation estimator.
func runAnalysis() (*cpm.Analysis, error) {
	if flagTarget == "" {
		return nil, fmt.Errorf("--target is required")
	}

	nodes, edges, err := loadTimings()
	if err != nil {
		return nil, err
	}

	g, err := lineage.Build(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("build lineage graph: %w", err)
	}

	if flagCorrections != "" {
		data, err := os.ReadFile(flagCorrections)
		if err != nil {
			return nil, fmt.Errorf("read corrections: %w", err)
		}
		corrections, err := lineage.ParseCorrections(data)
		if err != nil {
			return nil, err
		}
		if err := g.Apply(corrections); err != nil {
			return nil, fmt.Errorf("apply corrections: %w", err)
		}
	}

	analysis, err := cpm.Analyze(g, flagTarget)
	if err != nil {
		return nil, fmt.Errorf("critical path analysis: %w", err)
	}
	cpm.EstimateOptimisations(analysis)

	return analysis, nil
}

// loadTimings dispatches to the adapter matching the source flags.
func loadTimings() (map[string]lineage.NodeTiming, []lineage.EdgeKey, error) {
	dbt := flagManifest != "" || flagRunResults != ""
	csv := flagEdges != "" || flagRuntimes != ""

	switch {
	case dbt && csv:
		return nil, nil, fmt.Errorf("pass either --edges/--runtimes or --manifest/--run-results, not both")
	case dbt:
		if flagManifest == "" || flagRunResults == "" {
			return nil, nil, fmt.Errorf("--manifest and --run-results must be used together")
		}
		return ingest.LoadDbt(flagManifest, flagRunResults)
	case csv:
		if flagEdges == "" || flagRuntimes == "" {
			return nil, nil, fmt.Errorf("--edges and --runtimes must be used together")
		}
		return ingest.LoadCSV(flagEdges, flagRuntimes)
	default:
		return nil, nil, fmt.Errorf("no timing source given (--edges/--runtimes or --manifest/--run-results)")
	}
}
