package render

import (
	"bytes"
	"fmt"
	"strings"
)

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders graph in Graphviz DOT format with pinned positions, for use with neato -n"
}

// ContentType returns the MIME type of the output
func (r *DOTRenderer) ContentType() string {
	return "text/vnd.graphviz"
}

// dotPointsPerInch converts screen pixels to Graphviz inches
const dotPointsPerInch = 72.0

// Render creates a DOT representation of the scene
func (r *DOTRenderer) Render(scene *Scene, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	w, h := sceneSize(scene, options)

	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%s, size=\"%g,%g\"];\n",
		dotQuote(scene.Background), w/dotPointsPerInch, h/dotPointsPerInch)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, fontname=\"Helvetica\", fontsize=%g, fontcolor=%s];\n",
		LabelFontSize, dotQuote(scene.LabelColor))
	buf.WriteString("  edge [fontname=\"Helvetica\"];\n")

	for _, n := range scene.Nodes {
		label := ""
		if options.ShowLabels {
			label = n.Label
		}
		// DOT y grows upward
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%s, color=%s, penwidth=%.2f, width=%.3f, pos=\"%.2f,%.2f!\"];\n",
			dotQuote(n.ID), dotQuote(label), dotQuote(n.Fill), dotQuote(n.Stroke), n.StrokeWidth,
			2*n.Radius/dotPointsPerInch, n.X, h-n.Y)
	}

	for _, e := range scene.Edges {
		attrs := fmt.Sprintf("color=%s, penwidth=%.2f", dotQuote(dotColor(e.Color, e.Opacity)), e.Width)
		if options.ShowEdgeLabels && e.Label != "" {
			attrs += ", label=" + dotQuote(e.Label)
		}
		fmt.Fprintf(&buf, "  %s -- %s [%s];\n", dotQuote(e.Source), dotQuote(e.Target), attrs)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func dotQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}

// dotColor appends an alpha byte to a #rrggbb colour
func dotColor(hex string, opacity float64) string {
	r, g, b := parseHexColor(hex)
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, uint8(clamp(int(opacity*255+0.5), 0, 255)))
}
