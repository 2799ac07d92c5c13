package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interlink/internal/crawling"
	"github.com/jonathan/interlink/internal/fetch"
	"github.com/jonathan/interlink/internal/observability"
	"github.com/jonathan/interlink/internal/store"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect article metadata from a sitemap",
	Long: `Fetches the sitemap, visits every listed URL not already in the store,
extracts title, excerpt, keywords and categories, and appends one article
row per page. Pages that fail are skipped and retried on the next run.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runCollect,
}

var (
	collectConfigPath string
	collectSitemapURL string
	collectStorePath  string
	collectMaxPages   int
	collectUserAgent  string
	collectUseBrowser bool
	collectVerbose    bool
)

func init() {
	collectCmd.Flags().StringVar(&collectConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	collectCmd.Flags().StringVarP(&collectSitemapURL, "sitemap-url", "u", "", "Sitemap URL to collect from")
	collectCmd.Flags().StringVarP(&collectStorePath, "store", "s", "", "Path to the article store")
	collectCmd.Flags().IntVar(&collectMaxPages, "max-pages", 0, "Maximum pages to process this run")
	collectCmd.Flags().StringVar(&collectUserAgent, "user-agent", "", "HTTP user agent for page fetches")
	collectCmd.Flags().BoolVar(&collectUseBrowser, "use-browser", false, "Use headless browser for JS-rendered pages (requires Chrome)")
	collectCmd.Flags().BoolVarP(&collectVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd, collectConfigPath, collectVerbose)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("sitemap-url") {
		cfg.SitemapURL = collectSitemapURL
	}
	if cmd.Flags().Changed("store") {
		cfg.StorePath = collectStorePath
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = collectMaxPages
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = collectUserAgent
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = collectUseBrowser
	}

	merged := cfg.ApplyDefaults()
	if err := merged.Validate(); err != nil {
		return err
	}
	if merged.SitemapURL == "" {
		return fmt.Errorf("sitemap URL required: set --sitemap-url flag or sitemap_url in config")
	}

	st, err := store.Open(merged.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store %s: %w", merged.StorePath, err)
	}
	defer func() { _ = st.Close() }()

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UserAgent = merged.UserAgent

	run, err := crawling.Collect(ctx, st, merged.SitemapURL, crawling.Options{
		MaxPages:   merged.MaxPages,
		UseBrowser: merged.UseBrowser,
		Fetch:      fetchOpts,
	})
	if err != nil {
		return fmt.Errorf("collect failed: %w", err)
	}

	if merged.Verbose {
		observability.NewPrinter(os.Stdout).PrintCrawlRun(run)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Collected %d articles (%d attempted, %d skipped)\n", run.Saved, run.Attempted, run.Skipped)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Store: %s\n", merged.StorePath)

	return nil
}
