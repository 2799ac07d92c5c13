package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interlink/internal/crawling"
	"github.com/jonathan/interlink/internal/embedding"
	"github.com/jonathan/interlink/internal/fetch"
	"github.com/jonathan/interlink/internal/observability"
	"github.com/jonathan/interlink/internal/recommend"
	"github.com/jonathan/interlink/internal/store"
	"github.com/jonathan/interlink/internal/visualize"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end-to-end",
	Long: `Orchestrates the entire link recommendation process: collect -> recommend -> visualize.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runSitemapURL    string
	runStorePath     string
	runMaxPages      int
	runUserAgent     string
	runUseBrowser    bool
	runCachePath     string
	runTopK          int
	runModel         string
	runAPIKey        string
	runMinSimilarity float64
	runOutput        string
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runSitemapURL, "sitemap-url", "u", "", "Sitemap URL to collect from")
	runCommand.Flags().StringVarP(&runStorePath, "store", "s", "", "Path to the article store")
	runCommand.Flags().IntVar(&runMaxPages, "max-pages", 0, "Maximum pages to process this run")
	runCommand.Flags().StringVar(&runUserAgent, "user-agent", "", "HTTP user agent for page fetches")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for JS-rendered pages (requires Chrome)")
	runCommand.Flags().StringVar(&runCachePath, "cache", "", "Path to the embedding cache file")
	runCommand.Flags().IntVarP(&runTopK, "top-k", "k", 0, "Recommendations per source article")
	runCommand.Flags().StringVar(&runModel, "model", "", "Embedding model identifier")
	runCommand.Flags().Float64Var(&runMinSimilarity, "min-similarity", 0, "Similarity cutoff for graph edges")
	runCommand.Flags().StringVarP(&runOutput, "out", "o", "", "Path for the rendered HTML graph")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd, runConfigPath, runVerbose)
	if err != nil {
		return err
	}

	// Apply CLI overrides; only override if the flag was explicitly set
	if cmd.Flags().Changed("sitemap-url") {
		cfg.SitemapURL = runSitemapURL
	}
	if cmd.Flags().Changed("store") {
		cfg.StorePath = runStorePath
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = runMaxPages
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = runUserAgent
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("cache") {
		cfg.CachePath = runCachePath
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = runTopK
	}
	if cmd.Flags().Changed("model") {
		cfg.EmbeddingModel = runModel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("min-similarity") {
		cfg.MinSimilarity = &runMinSimilarity
	}
	if cmd.Flags().Changed("out") {
		cfg.GraphOutput = runOutput
	}

	merged := cfg.ApplyDefaults()
	if err := merged.Validate(); err != nil {
		return err
	}
	if merged.SitemapURL == "" {
		return fmt.Errorf("sitemap URL required: set --sitemap-url flag or sitemap_url in config")
	}

	apiKey, err := resolveAPIKey(merged.APIKey)
	if err != nil {
		return err
	}

	st, err := store.Open(merged.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store %s: %w", merged.StorePath, err)
	}
	defer func() { _ = st.Close() }()

	printer := observability.NewPrinter(os.Stdout)

	// Stage 1: collect
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UserAgent = merged.UserAgent

	crawlRun, err := crawling.Collect(ctx, st, merged.SitemapURL, crawling.Options{
		MaxPages:   merged.MaxPages,
		UseBrowser: merged.UseBrowser,
		Fetch:      fetchOpts,
	})
	if err != nil {
		return fmt.Errorf("collect failed: %w", err)
	}
	if merged.Verbose {
		printer.PrintCrawlRun(crawlRun)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Collected %d articles (%d attempted, %d skipped)\n", crawlRun.Saved, crawlRun.Attempted, crawlRun.Skipped)
	}

	// Stage 2: recommend
	client, err := embedding.NewGeminiClient(ctx, merged.EmbeddingModel, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	defer func() { _ = client.Close() }()

	cache := embedding.NewCache(merged.CachePath)

	result, err := recommend.Run(ctx, st, client, cache, merged.TopK)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}
	if merged.Verbose {
		printer.PrintRecommendations(result.Recommendations, result.CacheHit)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Ranked %d articles, wrote %d recommendations\n", result.Articles, len(result.Recommendations))
	}

	// Stage 3: visualize
	recs, err := st.Recommendations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recommendations: %w", err)
	}

	graph := visualize.BuildGraph(recs, *merged.MinSimilarity)
	if err := visualize.Render(graph, merged.GraphOutput); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	if merged.Verbose {
		printer.PrintGraph(graph, *merged.MinSimilarity, merged.GraphOutput)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Graph: %s\n", merged.GraphOutput)

	return nil
}
