package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// chain builds A - B - C with fixed positions
func chain() (*models.Graph, physics.Snapshot) {
	g := models.NewGraph("chain")
	g.Nodes = []models.Node{
		models.NewNode("A", "Alpha", "core", 9),
		models.NewNode("B", "Beta", "core", 5),
		models.NewNode("C", "", "edge", 1),
	}
	g.Edges = []models.Edge{
		models.NewEdge("A", "B", 9),
		models.NewEdge("B", "C", 2),
	}
	snap := physics.Snapshot{
		Width: 800, Height: 600,
		Nodes: []physics.NodeState{
			{ID: "A", X: 100, Y: 100},
			{ID: "B", X: 200, Y: 100},
			{ID: "C", X: 300, Y: 200, Pinned: true},
		},
	}
	return g, snap
}

func frame(t *testing.T, a *Adapter, snap physics.Snapshot, flags interact.Presentation) *Scene {
	t.Helper()
	scene, err := a.Frame(snap, interact.Identity(), flags)
	require.NoError(t, err)
	return scene
}

func TestHoverAdjacency(t *testing.T) {
	g, snap := chain()
	a := NewAdapter(g, nil, nil)

	scene := frame(t, a, snap, interact.Presentation{})
	for _, e := range scene.Edges {
		assert.Equal(t, EdgeOpacity, e.Opacity)
	}

	scene = frame(t, a, snap, interact.Presentation{Hovered: "A"})
	ab, ok := scene.Edge("A", "B")
	require.True(t, ok)
	bc, ok := scene.Edge("B", "C")
	require.True(t, ok)
	assert.Equal(t, EdgeOpacityFocus, ab.Opacity)
	assert.Equal(t, EdgeOpacityFaded, bc.Opacity)

	// Hovering the middle node emphasises both of its edges
	scene = frame(t, a, snap, interact.Presentation{Hovered: "B"})
	for _, e := range scene.Edges {
		assert.Equal(t, EdgeOpacityFocus, e.Opacity)
	}

	// Dragging focuses like hovering
	scene = frame(t, a, snap, interact.Presentation{Dragged: "C"})
	ab, _ = scene.Edge("A", "B")
	bc, _ = scene.Edge("B", "C")
	assert.Equal(t, EdgeOpacityFaded, ab.Opacity)
	assert.Equal(t, EdgeOpacityFocus, bc.Opacity)
}

func TestNodeGlyphs(t *testing.T) {
	g, snap := chain()
	a := NewAdapter(g, nil, nil)

	scene := frame(t, a, snap, interact.Presentation{Hovered: "A", Selected: "C"})
	require.Len(t, scene.Nodes, 3)

	nodeA, _ := scene.Node("A")
	assert.Equal(t, 20.0, nodeA.Radius)
	assert.Equal(t, "#ffff00", nodeA.Stroke)
	assert.Equal(t, StrokeWidthActive, nodeA.StrokeWidth)
	assert.Equal(t, 100+20+LabelOffset, nodeA.LabelY)
	assert.Equal(t, FallbackNodeColor, nodeA.Fill)

	nodeB, _ := scene.Node("B")
	assert.Equal(t, "#ffffff", nodeB.Stroke)
	assert.Equal(t, StrokeWidth, nodeB.StrokeWidth)

	nodeC, _ := scene.Node("C")
	assert.True(t, nodeC.Selected)
	assert.True(t, nodeC.Pinned)
	assert.Equal(t, "#ffff00", nodeC.Stroke)
	assert.Equal(t, "C", nodeC.Label, "empty label falls back to the id")

	ab, _ := scene.Edge("A", "B")
	assert.Equal(t, 4.0, ab.Width)
	bc, _ := scene.Edge("B", "C")
	assert.Equal(t, 1.0, bc.Width)
}

func TestFrameAppliesTransform(t *testing.T) {
	g, snap := chain()
	a := NewAdapter(g, nil, nil)

	tr := interact.ViewTransform{Scale: 2, TX: 10, TY: -5}
	scene, err := a.Frame(snap, tr, interact.Presentation{})
	require.NoError(t, err)

	nodeB, _ := scene.Node("B")
	assert.Equal(t, 410.0, nodeB.X)
	assert.Equal(t, 195.0, nodeB.Y)
	assert.Equal(t, 24.0, nodeB.Radius)
	assert.Equal(t, 2*LabelFontSize, nodeB.FontSize)

	ab, _ := scene.Edge("A", "B")
	assert.Equal(t, [4]float64{210, 195, 410, 195}, [4]float64{ab.X1, ab.Y1, ab.X2, ab.Y2})
	assert.Equal(t, 8.0, ab.Width)
	assert.Equal(t, tr, scene.Transform)
}

func TestMissingNodeIsSkipped(t *testing.T) {
	g, snap := chain()
	a := NewAdapter(g, nil, nil)
	snap.Nodes = snap.Nodes[:2] // C has no position

	scene := frame(t, a, snap, interact.Presentation{})
	assert.Len(t, scene.Nodes, 2)
	_, ok := scene.Node("C")
	assert.False(t, ok)
	_, ok = scene.Edge("B", "C")
	assert.False(t, ok)
	assert.Len(t, scene.Edges, 1)
	assert.True(t, a.missing["C"])

	// Repeated frames keep working and report once
	scene = frame(t, a, snap, interact.Presentation{})
	assert.Len(t, scene.Nodes, 2)
	assert.Len(t, a.missing, 1)
}

func TestClusterColours(t *testing.T) {
	g, snap := chain()
	g.ClusterColors = map[string]string{"core": "#8B0000"}

	a := NewAdapter(g, nil, nil)
	scene := frame(t, a, snap, interact.Presentation{})
	nodeA, _ := scene.Node("A")
	nodeC, _ := scene.Node("C")
	assert.Equal(t, "#8B0000", nodeA.Fill)
	assert.Equal(t, FallbackNodeColor, nodeC.Fill)

	vivid := NewAdapter(g, VividPalette(), nil)
	scene = frame(t, vivid, snap, interact.Presentation{})
	nodeA, _ = scene.Node("A")
	nodeC, _ = scene.Node("C")
	assert.Equal(t, "#8B0000", nodeA.Fill, "graph overrides beat the palette")
	assert.Equal(t, VividPalette().NodeColors[0], nodeC.Fill)
}

func TestNetworkPaletteClusterTable(t *testing.T) {
	g, snap := chain()
	g.Nodes[0].Cluster = "military_units"
	g.Nodes[1].Cluster = "opposition_forces"

	a := NewAdapter(g, nil, nil)
	scene := frame(t, a, snap, interact.Presentation{})
	nodeA, _ := scene.Node("A")
	nodeB, _ := scene.Node("B")
	nodeC, _ := scene.Node("C")
	assert.Equal(t, "#556B2F", nodeA.Fill)
	assert.Equal(t, "#DC143C", nodeB.Fill)
	assert.Equal(t, FallbackNodeColor, nodeC.Fill, "clusters outside the table")

	// Each call hands out its own table
	p := DefaultPalette()
	p.ClusterColors["military_units"] = "#000000"
	assert.Equal(t, "#556B2F", DefaultPalette().ClusterColors["military_units"])
}

func TestDispose(t *testing.T) {
	g, snap := chain()
	a := NewAdapter(g, nil, nil)
	assert.Equal(t, 5, a.Mounted())

	a.Dispose()
	assert.Zero(t, a.Mounted())
	a.Dispose()

	_, err := a.Frame(snap, interact.Identity(), interact.Presentation{})
	assert.True(t, errors.Is(err, errors.ErrDisposed))
}

func TestEmptyGraphDrawsNothing(t *testing.T) {
	a := NewAdapter(models.NewGraph("empty"), nil, nil)
	scene, err := a.Frame(physics.Snapshot{Width: 100, Height: 100, Settled: true}, interact.Identity(), interact.Presentation{})
	require.NoError(t, err)
	assert.Empty(t, scene.Nodes)
	assert.Empty(t, scene.Edges)
	assert.True(t, scene.Settled)
}

func TestGetPalette(t *testing.T) {
	for _, name := range []string{"", "network", "vivid", "surreal"} {
		p, err := GetPalette(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Background)
	}
	_, err := GetPalette("neon")
	assert.True(t, errors.IsInvalidConfigError(err))
}
