// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/interlink/internal/types"
	"github.com/jonathan/interlink/internal/visualize"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxRowsToShow is the default number of recommendation rows to display
	maxRowsToShow = 15
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCrawlRun outputs a summary of one collect invocation.
func (p *Printer) PrintCrawlRun(run *types.CrawlRun) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sitemap:   %s\n", run.SitemapURL))
	sb.WriteString(fmt.Sprintf("Attempted: %d\n", run.Attempted))
	sb.WriteString(fmt.Sprintf("Saved:     %d\n", run.Saved))
	sb.WriteString(fmt.Sprintf("Skipped:   %d", run.Skipped))
	if !run.CompletedAt.IsZero() && !run.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("\nDuration:  %s", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond)))
	}

	p.printBox("CRAWL RUN", sb.String())
}

// PrintRecommendations outputs the top recommendation rows as a table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecommendations(recs []types.Recommendation, cacheHit bool) {
	if cacheHit {
		fmt.Fprintln(p.out, "Embeddings served from cache.")
	} else {
		fmt.Fprintln(p.out, "Embeddings recomputed.")
	}

	if len(recs) == 0 {
		fmt.Fprintln(p.out, "No recommendations produced.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.AppendHeader(table.Row{"#", "Source", "Target", "Score", "Anchor"})

	count := min(len(recs), maxRowsToShow)
	for i := 0; i < count; i++ {
		r := recs[i]
		t.AppendRow(table.Row{i + 1, r.SourceURL, r.TargetURL, fmt.Sprintf("%.4f", r.Score), r.AnchorText})
	}
	t.Render()

	if len(recs) > maxRowsToShow {
		fmt.Fprintf(p.out, "... and %d more rows\n", len(recs)-maxRowsToShow)
	}
}

// PrintGraph outputs a summary of the rendered link graph.
func (p *Printer) PrintGraph(g *visualize.Graph, cutoff float64, outputPath string) {
	if g == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cutoff: %.2f\n", cutoff))
	sb.WriteString(fmt.Sprintf("Nodes:  %d\n", len(g.Nodes)))
	sb.WriteString(fmt.Sprintf("Edges:  %d\n", len(g.Edges)))
	sb.WriteString(fmt.Sprintf("Output: %s", outputPath))

	p.printBox("LINK GRAPH", sb.String())
}
