// Package visualize builds the link graph from recommendations and renders
// it as an interactive HTML document.
package visualize

import (
	"net/url"
	"strings"

	"github.com/jonathan/interlink/internal/types"
)

// Node is one article in the link graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge is one recommended link, directed source to target.
type Edge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Value float64 `json:"value"`
	Title string  `json:"title,omitempty"`
}

// Graph is the ephemeral link graph handed to the renderer. It is never
// persisted except as the rendered document.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildGraph filters recommendations by the similarity cutoff and builds
// the directed graph: one node per distinct URL, one edge per surviving
// row. An empty result is a valid zero-edge graph.
func BuildGraph(recs []types.Recommendation, cutoff float64) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
	seen := make(map[string]bool)

	addNode := func(u string) {
		if !seen[u] {
			seen[u] = true
			g.Nodes = append(g.Nodes, Node{ID: u, Label: shortLabel(u)})
		}
	}

	for _, r := range recs {
		if r.Score < cutoff {
			continue
		}
		addNode(r.SourceURL)
		addNode(r.TargetURL)
		g.Edges = append(g.Edges, Edge{
			From:  r.SourceURL,
			To:    r.TargetURL,
			Value: r.Score,
			Title: r.AnchorText,
		})
	}

	return g
}

// shortLabel strips the scheme and host so node labels show only the
// article slug. Unparseable URLs are shown as-is.
func shortLabel(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	label := strings.Trim(parsed.Path, "/")
	if label == "" {
		label = parsed.Host
	}
	return label
}
