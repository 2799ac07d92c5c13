package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interlink/internal/types"
	"github.com/jonathan/interlink/internal/visualize"
)

func TestPrintCrawlRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	started := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	p.PrintCrawlRun(&types.CrawlRun{
		ID:          uuid.New(),
		SitemapURL:  "https://example.com/sitemap.xml",
		StartedAt:   started,
		CompletedAt: started.Add(3 * time.Second),
		Attempted:   10,
		Saved:       8,
		Skipped:     2,
	})

	out := buf.String()
	assert.Contains(t, out, "CRAWL RUN")
	assert.Contains(t, out, "Attempted: 10")
	assert.Contains(t, out, "Saved:     8")
	assert.Contains(t, out, "Skipped:   2")
}

func TestPrintCrawlRun_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCrawlRun(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecommendations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	recs := []types.Recommendation{
		{SourceURL: "https://example.com/a", TargetURL: "https://example.com/b", Score: 0.91234, AnchorText: "Post B", Position: 0},
		{SourceURL: "https://example.com/b", TargetURL: "https://example.com/a", Score: 0.91234, AnchorText: "Post A", Position: 0},
	}
	p.PrintRecommendations(recs, true)

	out := buf.String()
	assert.Contains(t, out, "Embeddings served from cache.")
	assert.Contains(t, out, "0.9123")
	assert.Contains(t, out, "Post B")
}

func TestPrintRecommendations_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	recs := make([]types.Recommendation, 20)
	for i := range recs {
		recs[i] = types.Recommendation{
			SourceURL: "https://example.com/a",
			TargetURL: "https://example.com/b",
			Score:     0.5,
		}
	}
	p.PrintRecommendations(recs, false)

	out := buf.String()
	assert.Contains(t, out, "Embeddings recomputed.")
	assert.Contains(t, out, "and 5 more rows")
}

func TestPrintRecommendations_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecommendations(nil, false)
	assert.Contains(t, buf.String(), "No recommendations produced.")
}

func TestPrintGraph(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	g := &visualize.Graph{
		Nodes: []visualize.Node{{ID: "https://example.com/a", Label: "a"}},
		Edges: []visualize.Edge{},
	}
	p.PrintGraph(g, 0.3, "link_graph.html")

	out := buf.String()
	assert.Contains(t, out, "LINK GRAPH")
	assert.Contains(t, out, "Cutoff: 0.30")
	assert.Contains(t, out, "Nodes:  1")
	assert.True(t, strings.Contains(out, "link_graph.html"))
}
