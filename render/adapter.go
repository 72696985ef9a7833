package render

import (
	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// Adapter turns simulation snapshots into scenes. It owns one glyph handle
// per node and per edge, created on mount and released by Dispose; nothing
// outside the adapter holds them.
type Adapter struct {
	graph   *models.Graph
	palette *Palette
	logger  *zap.SugaredLogger

	nodes    map[string]*NodeGlyph
	order    []string
	edges    []*EdgeGlyph
	missing  map[string]bool
	disposed bool
}

// NewAdapter mounts the glyph handles for g. Cluster colours from the
// graph override the palette; a nil palette means DefaultPalette.
func NewAdapter(g *models.Graph, palette *Palette, log *zap.SugaredLogger) *Adapter {
	if palette == nil {
		palette = DefaultPalette()
	}
	palette = palette.WithOverrides(g.ClusterColors)

	clusters := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		clusters[i] = n.Cluster
	}
	colors := palette.clusterColors(clusters)

	a := &Adapter{
		graph:   g,
		palette: palette,
		logger:  logger.OrNop(log),
		nodes:   make(map[string]*NodeGlyph, len(g.Nodes)),
		order:   make([]string, 0, len(g.Nodes)),
		edges:   make([]*EdgeGlyph, 0, len(g.Edges)),
		missing: map[string]bool{},
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if _, dup := a.nodes[n.ID]; dup {
			continue
		}
		a.nodes[n.ID] = &NodeGlyph{
			ID:      n.ID,
			Label:   n.DisplayLabel(),
			Cluster: n.Cluster,
			Fill:    colors[n.Cluster],
		}
		a.order = append(a.order, n.ID)
	}
	for i, e := range g.Edges {
		a.edges = append(a.edges, &EdgeGlyph{
			Index:  i,
			Source: e.Source,
			Target: e.Target,
			Color:  palette.EdgeColor,
			Label:  e.Label,
		})
	}

	a.logger.Debugw("Render adapter mounted",
		logger.FieldNodes, len(a.nodes),
		logger.FieldEdges, len(a.edges),
	)
	return a
}

// Mounted returns the number of live glyph handles
func (a *Adapter) Mounted() int {
	return len(a.nodes) + len(a.edges)
}

// Palette returns the resolved palette, graph overrides included
func (a *Adapter) Palette() *Palette {
	return a.palette
}

// Frame updates every glyph from snap under transform t and returns the
// scene. Nodes absent from the snapshot are skipped along with the edges
// touching them; each missing id is logged once.
func (a *Adapter) Frame(snap physics.Snapshot, t interact.ViewTransform, flags interact.Presentation) (*Scene, error) {
	if a.disposed {
		return nil, errors.Wrap(errors.ErrDisposed, "render frame")
	}

	states := snap.ByID()
	focus := flags.Focus()

	scene := &Scene{
		Title:       a.graph.Name,
		Width:       snap.Width,
		Height:      snap.Height,
		Background:  a.palette.Background,
		LabelColor:  a.palette.LabelColor,
		Transform:   t,
		Tick:        snap.Tick,
		Temperature: snap.Temperature,
		Settled:     snap.Settled,
		Nodes:       make([]NodeGlyph, 0, len(a.order)),
		Edges:       make([]EdgeGlyph, 0, len(a.edges)),
	}

	present := make(map[string]bool, len(a.order))
	for i := range a.graph.Nodes {
		node := &a.graph.Nodes[i]
		glyph := a.nodes[node.ID]
		if present[node.ID] {
			continue
		}
		st, ok := states[node.ID]
		if !ok {
			a.reportMissing(node.ID)
			continue
		}
		present[node.ID] = true

		r := node.Radius()
		glyph.X, glyph.Y = t.Apply(st.X, st.Y)
		glyph.Radius = r * t.Scale
		glyph.LabelX = glyph.X
		glyph.LabelY = glyph.Y + (r+LabelOffset)*t.Scale
		glyph.FontSize = LabelFontSize * t.Scale
		glyph.Pinned = st.Pinned
		glyph.Hovered = flags.Hovered == node.ID
		glyph.Dragged = flags.Dragged == node.ID
		glyph.Selected = flags.Selected == node.ID

		glyph.Stroke, glyph.StrokeWidth = a.palette.Stroke, StrokeWidth
		if glyph.Hovered || glyph.Dragged || glyph.Selected {
			glyph.Stroke, glyph.StrokeWidth = a.palette.HighlightStroke, StrokeWidthActive
		}
		glyph.StrokeWidth *= t.Scale

		scene.Nodes = append(scene.Nodes, *glyph)
	}

	for i, glyph := range a.edges {
		e := &a.graph.Edges[i]
		if !present[e.Source] || !present[e.Target] {
			for _, id := range [...]string{e.Source, e.Target} {
				if _, known := a.nodes[id]; !known {
					a.reportMissing(id)
				}
			}
			continue
		}
		s, d := states[e.Source], states[e.Target]
		glyph.X1, glyph.Y1 = t.Apply(s.X, s.Y)
		glyph.X2, glyph.Y2 = t.Apply(d.X, d.Y)
		glyph.Width = e.Width() * t.Scale
		glyph.Opacity = edgeOpacity(e, focus)
		scene.Edges = append(scene.Edges, *glyph)
	}

	return scene, nil
}

// edgeOpacity emphasises edges touching the focused node and fades the rest
func edgeOpacity(e *models.Edge, focus string) float64 {
	switch {
	case focus == "":
		return EdgeOpacity
	case e.Touches(focus):
		return EdgeOpacityFocus
	default:
		return EdgeOpacityFaded
	}
}

func (a *Adapter) reportMissing(id string) {
	if a.missing[id] {
		return
	}
	a.missing[id] = true
	a.logger.Warnw("Snapshot has no position for node, skipping glyph", logger.FieldNode, id)
}

// Dispose releases every glyph handle. Later frames return ErrDisposed.
func (a *Adapter) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	clear(a.nodes)
	a.edges = nil
	a.order = nil
	a.logger.Debugw("Render adapter disposed")
}
