// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Default values for the configuration surface. Every field can be
// overridden by a config file entry or a CLI flag.
const (
	DefaultStorePath      = "interlink.db"
	DefaultCachePath      = "embeddings.json"
	DefaultGraphOutput    = "link_graph.html"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultMaxPages       = 105
	DefaultTopK           = 8
	DefaultMinSimilarity  = 0.3
	DefaultUserAgent      = "Mozilla/5.0 (compatible; Interlink/1.0)"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Collect
	SitemapURL string `json:"sitemap_url,omitempty" validate:"omitempty,url"` // Sitemap seed URL
	StorePath  string `json:"store_path,omitempty"`                           // Path to the article store (SQLite)
	MaxPages   int    `json:"max_pages,omitempty" validate:"omitempty,gte=1"` // Pages to process per collect run
	UserAgent  string `json:"user_agent,omitempty"`                           // HTTP user agent for fetches
	UseBrowser bool   `json:"use_browser,omitempty"`                          // Headless browser fallback for JS-rendered pages

	// Recommend
	CachePath      string `json:"cache_path,omitempty"`                       // Path to the embedding cache file
	TopK           int    `json:"top_k,omitempty" validate:"omitempty,gte=1"` // Recommendations per source article
	EmbeddingModel string `json:"embedding_model,omitempty"`                  // Embedding model identifier
	APIKey         string `json:"api_key,omitempty"`                          // Gemini API key (falls back to GEMINI_API_KEY)

	// Visualize
	// MinSimilarity is a pointer so an explicit 0 (keep every edge) is
	// distinguishable from unset.
	MinSimilarity *float64 `json:"min_similarity,omitempty" validate:"omitempty,gte=0,lte=1"` // Similarity cutoff for graph edges
	GraphOutput   string   `json:"graph_output,omitempty"`                                    // Path for the rendered HTML graph

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed progress information
}

// Load loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are not checked here; those are enforced per command
// after flag merging.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("config error: field %q fails %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// ApplyDefaults returns a copy of the config with zero-valued fields
// replaced by the documented defaults.
func (c *Config) ApplyDefaults() Config {
	result := *c

	if result.StorePath == "" {
		result.StorePath = DefaultStorePath
	}
	if result.CachePath == "" {
		result.CachePath = DefaultCachePath
	}
	if result.GraphOutput == "" {
		result.GraphOutput = DefaultGraphOutput
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = DefaultEmbeddingModel
	}
	if result.UserAgent == "" {
		result.UserAgent = DefaultUserAgent
	}
	if result.MaxPages == 0 {
		result.MaxPages = DefaultMaxPages
	}
	if result.TopK == 0 {
		result.TopK = DefaultTopK
	}
	if result.MinSimilarity == nil {
		cutoff := float64(DefaultMinSimilarity)
		result.MinSimilarity = &cutoff
	}
	// Bool fields: cannot distinguish unset from false, so CLI flags win.

	return result
}
