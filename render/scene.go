package render

import (
	"github.com/TFMV/forcegraph/interact"
)

// Presentation constants for edges and nodes
const (
	EdgeOpacity       = 0.6
	EdgeOpacityFocus  = 1.0
	EdgeOpacityFaded  = 0.1
	StrokeWidth       = 2.0
	StrokeWidthActive = 3.0
	LabelOffset       = 14.0
	LabelFontSize     = 10.0
)

// NodeGlyph is the drawable state of one node, in screen coordinates
type NodeGlyph struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Cluster     string  `json:"cluster,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"r"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	LabelX      float64 `json:"labelX"`
	LabelY      float64 `json:"labelY"`
	FontSize    float64 `json:"fontSize"`
	Hovered     bool    `json:"hovered,omitempty"`
	Selected    bool    `json:"selected,omitempty"`
	Dragged     bool    `json:"dragged,omitempty"`
	Pinned      bool    `json:"pinned,omitempty"`
}

// EdgeGlyph is the drawable state of one edge, in screen coordinates
type EdgeGlyph struct {
	Index   int     `json:"index"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
	Label   string  `json:"label,omitempty"`
}

// Scene is the full set of primitives for one frame. Edges come first in
// draw order so nodes are painted over them.
type Scene struct {
	Title       string                 `json:"title,omitempty"`
	Width       float64                `json:"width"`
	Height      float64                `json:"height"`
	Background  string                 `json:"background"`
	LabelColor  string                 `json:"labelColor"`
	Transform   interact.ViewTransform `json:"transform"`
	Tick        int                    `json:"tick"`
	Temperature float64                `json:"temperature"`
	Settled     bool                   `json:"settled"`
	Edges       []EdgeGlyph            `json:"edges"`
	Nodes       []NodeGlyph            `json:"nodes"`
}

// Node returns the glyph for id
func (s *Scene) Node(id string) (NodeGlyph, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeGlyph{}, false
}

// Edge returns the first glyph between a and b, in either direction
func (s *Scene) Edge(a, b string) (EdgeGlyph, bool) {
	for _, e := range s.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return e, true
		}
	}
	return EdgeGlyph{}, false
}
