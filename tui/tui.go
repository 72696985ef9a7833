// Package tui shows a live view in the terminal with bubbletea.
//
// The view works in pixels; each terminal cell stands for a CellWidth x
// CellHeight block, so mouse events are posted at the cell centre.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/render"
	"github.com/TFMV/forcegraph/view"
)

const (
	CellWidth  = 6.0
	CellHeight = 12.0

	frameInterval = time.Second / 60
	wheelStep     = 120.0
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type frameMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Model is the bubbletea model for one view. It owns the view: frames are
// advanced from Update only.
type Model struct {
	view       *view.View
	title      string
	cols, rows int
	showLabels bool

	scene     *render.Scene
	activated string
	err       error
	styles    map[styleKey]lipgloss.Style
}

type styleKey struct {
	color  string
	active bool
	faint  bool
}

// New wraps v. The caller keeps ownership until the program exits; Dispose
// is called on quit.
func New(v *view.View, title string, showLabels bool) *Model {
	m := &Model{
		view:       v,
		title:      title,
		cols:       80,
		rows:       23,
		showLabels: showLabels,
		styles:     map[styleKey]lipgloss.Style{},
	}
	v.OnActivate(func(a interact.Activation) { m.activated = a.Node.DisplayLabel() })
	v.OnError(func(err error) { m.err = err })
	return m
}

// Init starts the frame clock
func (m *Model) Init() tea.Cmd {
	return tick()
}

// cellToPixel returns the view position at the centre of a cell
func cellToPixel(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * CellWidth, (float64(y) + 0.5) * CellHeight
}

// Update handles terminal input and frame ticks
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = max(msg.Width, 1), max(msg.Height-1, 1)
		m.post(view.Resize{Width: float64(m.cols) * CellWidth, Height: float64(m.rows) * CellHeight})

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.view.Dispose()
			return m, tea.Quit
		case "esc":
			m.post(view.Select{})
			m.activated = ""
		case "l":
			m.showLabels = !m.showLabels
		case "r":
			m.post(view.Reheat{Amount: 1})
		case "+", "=":
			m.zoom(-wheelStep)
		case "-", "_":
			m.zoom(wheelStep)
		case "tab":
			m.selectNext()
		}

	case tea.MouseMsg:
		if msg.Y >= m.rows {
			m.post(view.PointerLeave{})
			break
		}
		x, y := cellToPixel(msg.X, msg.Y)
		switch msg.Type {
		case tea.MouseLeft:
			m.post(view.PointerDown{X: x, Y: y})
		case tea.MouseRelease:
			m.post(view.PointerUp{X: x, Y: y})
		case tea.MouseMotion:
			m.post(view.PointerMove{X: x, Y: y})
		case tea.MouseWheelUp:
			m.post(view.Wheel{X: x, Y: y, DeltaY: -wheelStep})
		case tea.MouseWheelDown:
			m.post(view.Wheel{X: x, Y: y, DeltaY: wheelStep})
		}

	case frameMsg:
		scene, err := m.view.Frame()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.scene = scene
		return m, tick()
	}
	return m, nil
}

func (m *Model) post(e view.Event) {
	if err := m.view.Post(e); err != nil {
		m.err = err
	}
}

func (m *Model) zoom(deltaY float64) {
	x, y := cellToPixel(m.cols/2, m.rows/2)
	m.post(view.Wheel{X: x, Y: y, DeltaY: deltaY})
}

// selectNext moves the selection to the next node in draw order
func (m *Model) selectNext() {
	if m.scene == nil || len(m.scene.Nodes) == 0 {
		return
	}
	next := 0
	for i, n := range m.scene.Nodes {
		if n.Selected {
			next = (i + 1) % len(m.scene.Nodes)
			break
		}
	}
	m.post(view.Select{ID: m.scene.Nodes[next].ID})
}

func (m *Model) style(c render.Cell) lipgloss.Style {
	key := styleKey{color: c.Color, active: c.Active, faint: c.NodeID == "" && c.Opacity <= render.EdgeOpacityFaded}
	if s, ok := m.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Bold(key.active).Faint(key.faint)
	m.styles[key] = s
	return s
}

// View draws the scene and a status line
func (m *Model) View() string {
	if m.scene == nil {
		return "Laying out graph...\n"
	}

	var b strings.Builder
	for _, line := range render.Rasterize(m.scene, m.cols, m.rows, m.showLabels) {
		for _, c := range line {
			if c.Color == "" || c.Rune == ' ' {
				b.WriteRune(c.Rune)
				continue
			}
			b.WriteString(m.style(c).Render(string(c.Rune)))
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.status())
	return b.String()
}

func (m *Model) status() string {
	parts := []string{accentStyle.Render(m.title)}

	state := fmt.Sprintf("tick %d  T %.3f", m.scene.Tick, m.scene.Temperature)
	if m.scene.Settled {
		state += " (settled)"
	}
	parts = append(parts, statusStyle.Render(state))

	flags := m.view.Controller().Flags()
	if flags.Hovered != "" {
		parts = append(parts, statusStyle.Render("hover "+flags.Hovered))
	}
	if m.activated != "" {
		parts = append(parts, accentStyle.Render("> "+m.activated))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	parts = append(parts, helpStyle.Render("q quit  l labels  r reheat  +/- zoom  tab select"))
	return strings.Join(parts, "  ")
}

// Run opens a full-screen program on v and blocks until the user quits
func Run(v *view.View, title string, showLabels bool) error {
	p := tea.NewProgram(New(v, title, showLabels), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
