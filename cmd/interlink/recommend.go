package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interlink/internal/embedding"
	"github.com/jonathan/interlink/internal/observability"
	"github.com/jonathan/interlink/internal/recommend"
	"github.com/jonathan/interlink/internal/store"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Compute top-K link recommendations between stored articles",
	Long: `Embeds every stored article, ranks the most similar targets for each
source by cosine similarity and rewrites the recommendation table.
Embeddings are cached on disk and only recomputed when the article set,
text or model changes.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runRecommend,
}

var (
	recommendConfigPath string
	recommendStorePath  string
	recommendCachePath  string
	recommendTopK       int
	recommendModel      string
	recommendAPIKey     string
	recommendVerbose    bool
)

func init() {
	recommendCmd.Flags().StringVar(&recommendConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	recommendCmd.Flags().StringVarP(&recommendStorePath, "store", "s", "", "Path to the article store")
	recommendCmd.Flags().StringVar(&recommendCachePath, "cache", "", "Path to the embedding cache file")
	recommendCmd.Flags().IntVarP(&recommendTopK, "top-k", "k", 0, "Recommendations per source article")
	recommendCmd.Flags().StringVar(&recommendModel, "model", "", "Embedding model identifier")
	recommendCmd.Flags().StringVar(&recommendAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd, recommendConfigPath, recommendVerbose)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("store") {
		cfg.StorePath = recommendStorePath
	}
	if cmd.Flags().Changed("cache") {
		cfg.CachePath = recommendCachePath
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = recommendTopK
	}
	if cmd.Flags().Changed("model") {
		cfg.EmbeddingModel = recommendModel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = recommendAPIKey
	}

	merged := cfg.ApplyDefaults()
	if err := merged.Validate(); err != nil {
		return err
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
		observability.NewPrinter(os.Stdout).PrintRecommendations(result.Recommendations, result.CacheHit)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Ranked %d articles, wrote %d recommendations\n", result.Articles, len(result.Recommendations))
	}

	return nil
}
