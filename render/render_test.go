package render

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

func chainScene(t *testing.T) *Scene {
	t.Helper()
	g, snap := chain()
	g.Nodes[0].Label = `Alpha <&> "quoted"`
	g.Edges[0].Label = "allies"
	scene, err := NewAdapter(g, nil, nil).Frame(snap, interact.Identity(), interact.Presentation{Hovered: "A"})
	require.NoError(t, err)
	return scene
}

func TestGetRenderer(t *testing.T) {
	for _, format := range Formats {
		r, err := GetRenderer(strings.ToUpper(format))
		require.NoError(t, err, format)
		assert.NotEmpty(t, r.Name())
		assert.NotEmpty(t, r.Description())
		assert.NotEmpty(t, r.ContentType())
	}

	_, err := GetRenderer("webgl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))
	assert.Contains(t, errors.FlattenHints(err), "svg")
}

func TestSVGRenderer(t *testing.T) {
	opts := NewDefaultOptions("svg")
	opts.ShowEdgeLabels = true
	out, err := (&SVGRenderer{}).Render(chainScene(t), opts)
	require.NoError(t, err)

	svg := string(out)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, 3, strings.Count(svg, "<circle"))
	assert.Equal(t, 2, strings.Count(svg, "<line"))
	assert.Contains(t, svg, `stroke-opacity="1.00"`)
	assert.Contains(t, svg, `stroke-opacity="0.10"`)
	assert.Contains(t, svg, `stroke="#ffff00"`)
	assert.Contains(t, svg, "Alpha &lt;&amp;&gt; &#34;quoted&#34;")
	assert.Contains(t, svg, ">allies</text>")
	assert.NotContains(t, svg, `"quoted"`)
}

func TestASCIIRenderer(t *testing.T) {
	opts := NewDefaultOptions("ascii")
	out, err := (&ASCIIRenderer{}).Render(chainScene(t), opts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 30)
	assert.True(t, strings.HasPrefix(lines[0], "+---"))
	assert.Contains(t, lines[1], "chain")
	for _, l := range lines {
		assert.Equal(t, 80, len([]rune(l)))
	}
	inner := strings.Join(lines[1:len(lines)-1], "\n")
	assert.Contains(t, inner, string(activeRune), "hovered node is marked")
	assert.Contains(t, inner, string(edgeRuneFocus))
}

func TestRasterize(t *testing.T) {
	scene := &Scene{
		Width: 100, Height: 100,
		Nodes: []NodeGlyph{{ID: "n", Label: "node", X: 50, Y: 50, Fill: "#123456"}},
		Edges: []EdgeGlyph{{Source: "n", Target: "m", X1: 0, Y1: 50, X2: 99, Y2: 50, Opacity: EdgeOpacity, Color: "#666666"}},
	}
	grid := Rasterize(scene, 10, 10, true)
	require.Len(t, grid, 10)

	assert.Equal(t, 'O', grid[5][5].Rune)
	assert.Equal(t, "n", grid[5][5].NodeID)
	assert.Equal(t, "#123456", grid[5][5].Color)
	assert.Equal(t, edgeRune, grid[5][0].Rune)
	assert.Equal(t, "node", string([]rune{grid[6][3].Rune, grid[6][4].Rune, grid[6][5].Rune, grid[6][6].Rune}))

	// Degenerate sizes return a blank grid
	assert.Empty(t, Rasterize(scene, 0, 0, true))
	assert.Len(t, Rasterize(&Scene{}, 4, 2, true), 2)
}

func TestJSONRenderer(t *testing.T) {
	out, err := (&JSONRenderer{}).Render(chainScene(t), NewDefaultOptions("json"))
	require.NoError(t, err)

	var doc struct {
		Title    string          `json:"title"`
		Nodes    []NodeGlyph     `json:"nodes"`
		Edges    []EdgeGlyph     `json:"edges"`
		Metadata map[string]any  `json:"metadata"`
		Raw      json.RawMessage `json:"transform"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "chain", doc.Title)
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Edges, 2)
	assert.EqualValues(t, 3, doc.Metadata["nodeCount"])
	assert.JSONEq(t, `{"k":1,"x":0,"y":0}`, string(doc.Raw))
}

func TestDOTRenderer(t *testing.T) {
	out, err := (&DOTRenderer{}).Render(chainScene(t), NewDefaultOptions("dot"))
	require.NoError(t, err)

	dot := string(out)
	assert.True(t, strings.HasPrefix(dot, "graph G {"))
	assert.Contains(t, dot, `"A" -- "B"`)
	assert.Contains(t, dot, `"B" -- "C"`)
	assert.Contains(t, dot, `label="Alpha <&> \"quoted\""`)
	assert.Contains(t, dot, `pos="100.00,500.00!"`)
	assert.Contains(t, dot, `color="#666666ff"`)
	assert.Contains(t, dot, `color="#6666661a"`)
}

func TestPNGRenderer(t *testing.T) {
	out, err := (&PNGRenderer{}).Render(chainScene(t), NewDefaultOptions("png"))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	// Centre of node B carries the fallback fill
	r, g, b, _ := img.At(200, 100).RGBA()
	assert.Equal(t, [3]uint32{0x69, 0xb3, 0xa2}, [3]uint32{r >> 8, g >> 8, b >> 8})

	_, err = (&PNGRenderer{}).Render(&Scene{}, &OutputOptions{})
	assert.Error(t, err)
}

func TestHTMLRenderer(t *testing.T) {
	opts := NewDefaultOptions("html")
	opts.WebSocketPath = "/ws"
	out, err := (&HTMLRenderer{}).Render(chainScene(t), opts)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>chain</title>")
	assert.Contains(t, page, `"nodes":[`)
	assert.Regexp(t, `const wsPath = "\\?/ws"`, page)
	assert.NotContains(t, page, "ZgotmplZ")
}

func TestGenerateLayout(t *testing.T) {
	g := models.NewGraph("star")
	g.Nodes = append(g.Nodes, models.NewNode("hub", "Hub", "core", 10))
	for _, id := range []string{"a", "b", "c", "d"} {
		g.Nodes = append(g.Nodes, models.NewNode(id, "", "leaf", 3))
		g.Edges = append(g.Edges, models.NewEdge("hub", id, 6))
	}
	g.Edges = append(g.Edges, models.NewEdge("hub", "ghost", 1))

	layout, err := GenerateLayout(context.Background(), g, NewDefaultOptions("svg"), physics.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.True(t, layout.Snapshot.Settled)
	assert.Len(t, layout.Scene.Nodes, 5)
	assert.Len(t, layout.Scene.Edges, 4)
	require.Len(t, layout.Diagnostics, 1)
	assert.Equal(t, models.KindUnknownEndpoint, layout.Diagnostics[0].Kind)
	assert.Equal(t, "star", layout.Scene.Title)

	for _, n := range layout.Scene.Nodes {
		assert.True(t, n.X >= 0 && n.X <= 800 && n.Y >= 0 && n.Y <= 600, "node %s inside viewport", n.ID)
	}
}

func TestGenerateHonoursContext(t *testing.T) {
	g := models.NewGraph("ring")
	for i := range 50 {
		g.Nodes = append(g.Nodes, models.NewNode(string(rune('a'+i%26))+string(rune('a'+i/26)), "", "", 5))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Generate(ctx, g, NewDefaultOptions("json"), physics.DefaultConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	opts := NewDefaultOptions("webgl")
	_, _, err = Generate(context.Background(), g, opts, physics.DefaultConfig(), nil)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	opts = NewDefaultOptions("svg")
	opts.Timeout = time.Minute
	out, layout, err := Generate(context.Background(), g, opts, physics.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Len(t, layout.Scene.Nodes, 50)
}

func TestFitTransform(t *testing.T) {
	g, snap := chain()
	assert.Equal(t, interact.Identity(), FitTransform(g, snap, 800, 600), "layout already fits")

	snap.Nodes[2].X = 3000
	tr := FitTransform(g, snap, 800, 600)
	assert.Less(t, tr.Scale, 1.0)
	x, _ := tr.Apply(3000, 200)
	assert.LessOrEqual(t, x, 800.0)
	x, _ = tr.Apply(100, 100)
	assert.GreaterOrEqual(t, x, 0.0)

	assert.Equal(t, interact.Identity(), FitTransform(g, physics.Snapshot{}, 800, 600))
}

func TestParseHexColor(t *testing.T) {
	r, g, b := parseHexColor("#69b3a2")
	assert.Equal(t, [3]uint8{0x69, 0xb3, 0xa2}, [3]uint8{r, g, b})
	r, g, b = parseHexColor("fff")
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
	r, g, b = parseHexColor("bogus")
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}
