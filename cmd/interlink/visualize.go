package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interlink/internal/observability"
	"github.com/jonathan/interlink/internal/store"
	"github.com/jonathan/interlink/internal/visualize"
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Render the recommendation graph as an interactive HTML page",
	Long: `Reads the stored recommendations, keeps edges at or above the
similarity cutoff and writes a standalone HTML page with an interactive
force-directed graph.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runVisualize,
}

var (
	visualizeConfigPath    string
	visualizeStorePath     string
	visualizeMinSimilarity float64
	visualizeOutput        string
	visualizeVerbose       bool
)

func init() {
	visualizeCmd.Flags().StringVar(&visualizeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	visualizeCmd.Flags().StringVarP(&visualizeStorePath, "store", "s", "", "Path to the article store")
	visualizeCmd.Flags().Float64Var(&visualizeMinSimilarity, "min-similarity", 0, "Similarity cutoff for graph edges")
	visualizeCmd.Flags().StringVarP(&visualizeOutput, "out", "o", "", "Path for the rendered HTML graph")
	visualizeCmd.Flags().BoolVarP(&visualizeVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(visualizeCmd)
}

func runVisualize(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd, visualizeConfigPath, visualizeVerbose)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("store") {
		cfg.StorePath = visualizeStorePath
	}
	if cmd.Flags().Changed("min-similarity") {
		cfg.MinSimilarity = &visualizeMinSimilarity
	}
	if cmd.Flags().Changed("out") {
		cfg.GraphOutput = visualizeOutput
	}

	merged := cfg.ApplyDefaults()
	if err := merged.Validate(); err != nil {
		return err
	}

	st, err := store.Open(merged.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store %s: %w", merged.StorePath, err)
	}
	defer func() { _ = st.Close() }()

	recs, err := st.Recommendations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recommendations: %w", err)
	}

	graph := visualize.BuildGraph(recs, *merged.MinSimilarity)
	if err := visualize.Render(graph, merged.GraphOutput); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	if merged.Verbose {
		observability.NewPrinter(os.Stdout).PrintGraph(graph, *merged.MinSimilarity, merged.GraphOutput)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Wrote graph with %d nodes and %d edges\n", len(graph.Nodes), len(graph.Edges))
	}
	_, _ = fmt.Fprintf(os.Stdout, "Graph: %s\n", merged.GraphOutput)

	return nil
}
