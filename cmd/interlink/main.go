// Package main provides the entry point for the interlink CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/interlink/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "interlink",
	Short: "Internal link recommendations for content sites",
	Long:  "Interlink collects article metadata from a site's sitemap, computes embedding-based similarity between articles, and renders an interactive graph of recommended internal links.",
}

// loadMergedConfig loads the config file if a path was given and applies
// the verbose flag. Command-specific flag overrides happen at the call site.
func loadMergedConfig(cmd *cobra.Command, configPath string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
		}
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	return cfg, nil
}

// resolveAPIKey returns the configured API key, falling back to the
// GEMINI_API_KEY environment variable.
func resolveAPIKey(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key required: set --api-key flag, api_key in config, or GEMINI_API_KEY environment variable")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
