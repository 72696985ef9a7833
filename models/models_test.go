package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/errors"
)

func TestRadiusForImportance(t *testing.T) {
	tests := []struct {
		importance int
		want       float64
	}{
		{1, 8}, {3, 8}, {4, 12}, {6, 12}, {7, 16}, {8, 16}, {9, 20}, {10, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RadiusForImportance(tt.importance), "importance %d", tt.importance)
	}
}

func TestEffectiveImportance(t *testing.T) {
	assert.Equal(t, DefaultImportance, (&Node{}).EffectiveImportance())
	assert.Equal(t, MinImportance, (&Node{Importance: -3}).EffectiveImportance())
	assert.Equal(t, MaxImportance, (&Node{Importance: 42}).EffectiveImportance())
	assert.Equal(t, 7, (&Node{Importance: 7}).EffectiveImportance())
	assert.Equal(t, 12.0, (&Node{}).Radius())
}

func TestEdgeWidthAndWeight(t *testing.T) {
	assert.Equal(t, DefaultWeight, (&Edge{}).EffectiveWeight())
	assert.Equal(t, 2.0, (&Edge{}).Width())
	assert.Equal(t, 1.0, (&Edge{Weight: 3}).Width())
	assert.Equal(t, 3.0, (&Edge{Weight: 7}).Width())
	assert.Equal(t, 4.0, (&Edge{Weight: 9.5}).Width())
}

func TestGraphAddEdgeRequiresEndpoints(t *testing.T) {
	g := NewGraph("test")
	require.NoError(t, g.AddNode(NewNode("a", "A", "x", 5)))
	require.NoError(t, g.AddNode(NewNode("b", "B", "x", 5)))

	require.NoError(t, g.AddEdge(NewEdge("a", "b", 5)))
	err := g.AddEdge(NewEdge("a", "ghost", 5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEndpoint))
	assert.True(t, errors.Is(err, errors.ErrGraphData))

	err = g.AddNode(NewNode("a", "again", "", 1))
	assert.True(t, errors.Is(err, ErrDuplicateNode))
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
}

func TestFindConnectedNodesAndRemove(t *testing.T) {
	g := NewGraph("test")
	g.Nodes = []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	g.Edges = []Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}}

	ids := func(nodes []Node) []string {
		var out []string
		for _, n := range nodes {
			out = append(out, n.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a", "c"}, ids(g.FindConnectedNodes("b")))
	assert.Len(t, g.FindEdgesTouching("b"), 2)

	g.RemoveNode("b")
	assert.Len(t, g.Nodes, 2)
	assert.Empty(t, g.Edges)

	_, err := g.FindNodeByID("b")
	assert.True(t, errors.Is(err, errors.ErrUnknownNode))
}

func TestCloneDoesNotShareMaps(t *testing.T) {
	g := NewGraph("orig")
	g.Metadata["source"] = "export"
	g.ClusterColors = map[string]string{"core": "#8B0000"}
	g.Nodes = []Node{{ID: "a", Properties: map[string]any{"role": "hub"}}, {ID: "b"}}
	g.Edges = []Edge{{Source: "a", Target: "b"}}

	c := g.Clone()
	assert.Equal(t, g.ID, c.ID)
	c.Metadata["source"] = "changed"
	c.ClusterColors["core"] = "#000000"
	c.Nodes[0].Properties["role"] = "leaf"
	c.Nodes[0].Label = "A"
	c.Edges[0].Weight = 3

	assert.Equal(t, "export", g.Metadata["source"])
	assert.Equal(t, "#8B0000", g.ClusterColors["core"])
	assert.Equal(t, "hub", g.Nodes[0].Properties["role"])
	assert.Empty(t, g.Nodes[0].Label)
	assert.Zero(t, g.Edges[0].Weight)
	assert.Nil(t, c.Nodes[1].Properties)
}

func TestValidate(t *testing.T) {
	g := NewGraph("dirty")
	g.Nodes = []Node{
		{ID: "a", Importance: 5},
		{ID: "b", Importance: 11},
		{ID: "a", Label: "duplicate"},
	}
	g.Edges = []Edge{
		{Source: "a", Target: "b", Weight: 3},
		{Source: "a", Target: "ghost", Weight: 5},
		{Source: "b", Target: "a", Weight: -2},
	}

	clean, diags := Validate(g)

	require.Len(t, clean.Nodes, 2)
	assert.Empty(t, clean.Nodes[0].Label, "first occurrence wins")
	assert.Equal(t, MaxImportance, clean.Nodes[1].Importance)

	require.Len(t, clean.Edges, 2)
	assert.Equal(t, 3.0, clean.Edges[0].Weight)
	assert.Equal(t, DefaultWeight, clean.Edges[1].EffectiveWeight())

	kinds := map[DataErrorKind]int{}
	for _, d := range diags {
		kinds[d.Kind]++
		assert.True(t, errors.Is(d, errors.ErrGraphData))
	}
	assert.Equal(t, map[DataErrorKind]int{
		KindDuplicateNode:     1,
		KindInvalidImportance: 1,
		KindUnknownEndpoint:   1,
		KindInvalidWeight:     1,
	}, kinds)

	// the input is left untouched
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 3)
}

func TestValidateDanglingEdgeDiagnostic(t *testing.T) {
	g := NewGraph("dangling")
	g.Nodes = []Node{{ID: "a"}}
	g.Edges = []Edge{{Source: "a", Target: "ghost"}}

	clean, diags := Validate(g)
	assert.Empty(t, clean.Edges)
	require.Len(t, diags, 1)

	var gde *GraphDataError
	require.True(t, errors.As(diags[0], &gde))
	assert.Equal(t, KindUnknownEndpoint, gde.Kind)
	assert.Equal(t, 0, gde.EdgeIndex)
	assert.Equal(t, "ghost", gde.Target)
	assert.Contains(t, gde.Error(), `unknown target "ghost"`)
	assert.Contains(t, gde.ToLogFields(), "edge_index")
}

func TestAdjacency(t *testing.T) {
	g := NewGraph("adj")
	g.Nodes = []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	g.Edges = []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "c"},
		{Source: "a", Target: "ghost"},
	}

	adj := BuildAdjacency(g)
	assert.True(t, adj.Adjacent("a", "b"))
	assert.True(t, adj.Adjacent("b", "a"))
	assert.False(t, adj.Adjacent("a", "c"))
	assert.False(t, adj.Adjacent("c", "c"))
	assert.Equal(t, 1, adj.Degree("a"))
	assert.Equal(t, 2, adj.Degree("b"))
	assert.Equal(t, 3, adj.Degree("c"))
	assert.ElementsMatch(t, []string{"a", "c"}, adj.Neighbours("b"))
}
