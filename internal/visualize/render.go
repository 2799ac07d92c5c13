package visualize

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"

	"github.com/jonathan/interlink/internal/schemas"
)

// RenderError represents a failure to produce the graph document.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// graphDocument is the HTML shell around the vis-network canvas. The
// payload is injected as a JSON literal.
const graphDocument = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Internal link graph</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; font-family: sans-serif; }
  #network { width: 100%; height: 750px; border: 1px solid #ddd; }
</style>
</head>
<body>
<div id="network"></div>
<script>
  var data = {{.Payload}};
  var network = new vis.Network(
    document.getElementById("network"),
    {
      nodes: new vis.DataSet(data.nodes),
      edges: new vis.DataSet(data.edges)
    },
    {
      physics: {
        solver: "repulsion",
        repulsion: { nodeDistance: 120, springLength: 200 }
      },
      edges: {
        arrows: "to",
        scaling: { min: 1, max: 6 }
      },
      configure: { enabled: true, filter: "physics" }
    }
  );
</script>
</body>
</html>
`

// templateData carries the pre-serialized graph payload into the template.
type templateData struct {
	Payload template.JS
}

// Render validates the graph payload against the graph schema and writes
// the interactive HTML document to outputPath. A zero-edge graph renders
// normally.
func Render(g *Graph, outputPath string) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return &RenderError{Message: "failed to serialize graph", Cause: err}
	}

	if err := schemas.ValidateGraphPayload(payload); err != nil {
		return &RenderError{Message: "graph payload failed schema validation", Cause: err}
	}

	tmpl, err := template.New("graph").Parse(graphDocument)
	if err != nil {
		return &RenderError{Message: "failed to parse graph template", Cause: err}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return &RenderError{Message: fmt.Sprintf("failed to create %s", outputPath), Cause: err}
	}
	defer func() { _ = out.Close() }()

	if err := tmpl.Execute(out, templateData{Payload: template.JS(payload)}); err != nil {
		return &RenderError{Message: "failed to render graph document", Cause: err}
	}

	return nil
}
