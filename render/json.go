package render

import (
	"encoding/json"
	"time"
)

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders the scene as JSON data for machine consumption or custom visualizations"
}

// ContentType returns the MIME type of the output
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

// jsonDocument wraps a scene with export metadata
type jsonDocument struct {
	*Scene
	Metadata map[string]any `json:"metadata"`
}

// Render creates a JSON representation of the scene
func (r *JSONRenderer) Render(scene *Scene, options *OutputOptions) ([]byte, error) {
	doc := jsonDocument{
		Scene: scene,
		Metadata: map[string]any{
			"nodeCount": len(scene.Nodes),
			"edgeCount": len(scene.Edges),
		},
	}
	if options.Timestamp {
		doc.Metadata["timestamp"] = time.Now().Format(time.RFC3339)
	}
	return json.MarshalIndent(doc, "", "  ")
}
