package render

import (
	"bytes"
	"fmt"
	"html"
	"time"
)

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders graphs as Scalable Vector Graphics (SVG) for high-quality vector output"
}

// ContentType returns the MIME type of the output
func (r *SVGRenderer) ContentType() string {
	return "image/svg+xml"
}

// Render creates an SVG representation of the scene
func (r *SVGRenderer) Render(scene *Scene, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	w, h := sceneSize(scene, options)

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, scene.Background)

	// Draw a border if quality is high
	if options.Quality == "high" {
		fmt.Fprintf(&buf, `<rect x="0" y="0" width="%g" height="%g" fill="none" stroke="#334155" stroke-width="1"/>
`, w, h)
	}

	buf.WriteString("<g class=\"edges\">\n")
	for _, e := range scene.Edges {
		fmt.Fprintf(&buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="%.2f"/>
`, e.X1, e.Y1, e.X2, e.Y2, e.Color, e.Width, e.Opacity)

		if options.ShowEdgeLabels && e.Label != "" {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" fill-opacity="%.2f" text-anchor="middle">%s</text>
`, (e.X1+e.X2)/2, (e.Y1+e.Y2)/2, LabelFontSize*scene.Transform.Scale, e.Color, e.Opacity, html.EscapeString(e.Label))
		}
	}
	buf.WriteString("</g>\n")

	buf.WriteString("<g class=\"nodes\">\n")
	for _, n := range scene.Nodes {
		fmt.Fprintf(&buf, `<g class="node" data-id="%s">
<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>
`, html.EscapeString(n.ID), n.X, n.Y, n.Radius, n.Fill, n.Stroke, n.StrokeWidth)

		if options.ShowLabels && n.Label != "" {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" font-weight="500" fill="%s" text-anchor="middle">%s</text>
`, n.LabelX, n.LabelY, n.FontSize, scene.LabelColor, html.EscapeString(n.Label))
		}
		buf.WriteString("</g>\n")
	}
	buf.WriteString("</g>\n")

	if options.Timestamp {
		fmt.Fprintf(&buf, `<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="#808080">%s</text>
`, h-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	// Add graph metadata for high quality rendering
	if options.Quality == "high" {
		fmt.Fprintf(&buf, `<text x="5" y="15" font-family="sans-serif" font-size="10" fill="#808080">Nodes: %d | Edges: %d | Tick: %d</text>
`, len(scene.Nodes), len(scene.Edges), scene.Tick)
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// sceneSize prefers the scene viewport and falls back to the options
func sceneSize(scene *Scene, options *OutputOptions) (float64, float64) {
	w, h := scene.Width, scene.Height
	if w <= 0 {
		w = options.Width
	}
	if h <= 0 {
		h = options.Height
	}
	return w, h
}
