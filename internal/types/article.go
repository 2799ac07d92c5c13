// Package types defines the domain types shared across pipeline stages.
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Article holds the metadata extracted for a single article URL.
// The URL is the unique key; rows are append-only across collect runs.
type Article struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Excerpt         string   `json:"excerpt"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Categories      []string `json:"categories"`
	Processed       bool     `json:"processed"`
}

// CombinedText returns the text fed to the embedding model:
// title, excerpt and keywords joined in a fixed order, blank parts dropped.
func (a *Article) CombinedText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Title, a.Excerpt, strings.Join(a.Keywords, ", ")} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}

// Recommendation is one ranked internal-link suggestion.
// AnchorText is the target article's title at recommendation time; it is
// not kept in sync with later title edits.
type Recommendation struct {
	SourceURL  string  `json:"source_url"`
	TargetURL  string  `json:"target_url"`
	Score      float64 `json:"similarity_score"`
	AnchorText string  `json:"anchor_text"`
	Position   int     `json:"position"`
}

// CrawlRun records one collect invocation for auditing.
type CrawlRun struct {
	ID          uuid.UUID
	SitemapURL  string
	StartedAt   time.Time
	CompletedAt time.Time
	Attempted   int
	Saved       int
	Skipped     int
}
