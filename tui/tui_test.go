package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/view"
)

func newModel(t *testing.T) *Model {
	t.Helper()
	v, err := view.New(view.DefaultOptions(), nil)
	require.NoError(t, err)
	t.Cleanup(v.Dispose)

	g := models.NewGraph("terminal")
	g.Nodes = []models.Node{
		models.NewNode("a", "Alpha", "x", 5),
		models.NewNode("b", "Beta", "x", 9),
		models.NewNode("c", "Gamma", "y", 2),
	}
	g.Edges = []models.Edge{models.NewEdge("a", "b", 5), models.NewEdge("b", "c", 5)}
	_, err = v.Load(g)
	require.NoError(t, err)

	m := New(v, "terminal", true)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 41})
	return m
}

func settle(t *testing.T, m *Model) {
	t.Helper()
	for range 2000 {
		_, cmd := m.Update(frameMsg(time.Now()))
		require.NotNil(t, cmd)
		if m.scene.Settled {
			return
		}
	}
	t.Fatal("model did not settle")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeFirstFrame(t *testing.T) {
	m := newModel(t)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Laying out")
}

func TestFramesAndStatus(t *testing.T) {
	m := newModel(t)
	settle(t, m)
	assert.Equal(t, 120.0*CellWidth, m.scene.Width)
	assert.Equal(t, 40.0*CellHeight, m.scene.Height)

	out := m.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 41)
	assert.Contains(t, lines[40], "terminal")
	assert.Contains(t, lines[40], "settled")
	assert.Contains(t, out, "Beta")

	m.Update(key("l"))
	assert.False(t, m.showLabels)
	assert.NotContains(t, m.View(), "Beta")
}

func TestMouseClickActivates(t *testing.T) {
	m := newModel(t)
	settle(t, m)

	b, ok := m.scene.Node("b")
	require.True(t, ok)
	cx, cy := int(b.X/CellWidth), int(b.Y/CellHeight)

	m.Update(tea.MouseMsg{X: cx, Y: cy, Type: tea.MouseMotion})
	m.Update(frameMsg(time.Now()))
	assert.Equal(t, "b", m.view.Controller().Flags().Hovered)
	assert.Contains(t, m.View(), "hover b")

	m.Update(tea.MouseMsg{X: cx, Y: cy, Type: tea.MouseLeft})
	m.Update(tea.MouseMsg{X: cx, Y: cy, Type: tea.MouseRelease})
	m.Update(frameMsg(time.Now()))
	assert.Equal(t, "Beta", m.activated)

	m.Update(key("esc"))
	assert.Empty(t, m.activated)

	// The status row is outside the drawing area
	m.Update(tea.MouseMsg{X: cx, Y: m.rows, Type: tea.MouseMotion})
	m.Update(frameMsg(time.Now()))
	assert.Empty(t, m.view.Controller().Flags().Hovered)
}

func TestKeys(t *testing.T) {
	m := newModel(t)
	settle(t, m)

	m.Update(key("+"))
	m.Update(frameMsg(time.Now()))
	assert.Greater(t, m.scene.Transform.Scale, 1.0)

	m.Update(key("-"))
	m.Update(key("-"))
	m.Update(frameMsg(time.Now()))
	assert.Less(t, m.scene.Transform.Scale, 1.0)

	m.Update(key("r"))
	m.Update(frameMsg(time.Now()))
	assert.False(t, m.scene.Settled)

	m.Update(key("tab"))
	m.Update(frameMsg(time.Now()))
	assert.Equal(t, m.scene.Nodes[0].ID, m.view.Controller().Flags().Selected)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(frameMsg(time.Now()))
	assert.Error(t, m.err)
	assert.NotNil(t, cmd)
}
