package render

import (
	"strings"
	"time"
)

// Cell is one character of a rasterised scene
type Cell struct {
	Rune    rune
	Color   string  // Fill of the node or edge drawn here, empty for blank cells
	NodeID  string  // Set on node and label cells
	Opacity float64 // Edge opacity for edge cells, 1 for nodes and labels
	Active  bool    // Node is hovered, dragged or selected
}

var nodeSymbols = []rune{'O', '@', '#', 'X', '*', '%'}

const (
	edgeRune      = '·'
	edgeRuneFocus = '+'
	edgeRuneFaded = '.'
	activeRune    = '◉'
)

func isNodeCell(c Cell) bool {
	return c.NodeID != "" && c.Opacity >= 1 && c.Rune != ' '
}

// Rasterize maps a scene onto a cols x rows character grid. Edges are
// drawn first and never overwrite node or label cells.
func Rasterize(scene *Scene, cols, rows int, showLabels bool) [][]Cell {
	grid := make([][]Cell, rows)
	for i := range grid {
		grid[i] = make([]Cell, cols)
		for j := range grid[i] {
			grid[i][j] = Cell{Rune: ' '}
		}
	}
	if cols <= 0 || rows <= 0 || scene.Width <= 0 || scene.Height <= 0 {
		return grid
	}

	toCell := func(x, y float64) (int, int) {
		cx := int(x * float64(cols) / scene.Width)
		cy := int(y * float64(rows) / scene.Height)
		return cx, cy
	}

	for _, e := range scene.Edges {
		x1, y1 := toCell(e.X1, e.Y1)
		x2, y2 := toCell(e.X2, e.Y2)
		// Far off-screen endpoints only cost time to walk
		x1, x2 = clamp(x1, -cols, 2*cols), clamp(x2, -cols, 2*cols)
		y1, y2 = clamp(y1, -rows, 2*rows), clamp(y2, -rows, 2*rows)
		r := edgeRune
		switch {
		case e.Opacity >= EdgeOpacityFocus:
			r = edgeRuneFocus
		case e.Opacity <= EdgeOpacityFaded:
			r = edgeRuneFaded
		}
		drawLine(grid, x1, y1, x2, y2, Cell{Rune: r, Color: e.Color, Opacity: e.Opacity})
	}

	symbols := map[string]rune{}
	for _, n := range scene.Nodes {
		sym, ok := symbols[n.Cluster]
		if !ok {
			sym = nodeSymbols[len(symbols)%len(nodeSymbols)]
			symbols[n.Cluster] = sym
		}
		active := n.Hovered || n.Dragged || n.Selected
		if active {
			sym = activeRune
		}

		x, y := toCell(n.X, n.Y)
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		grid[y][x] = Cell{Rune: sym, Color: n.Fill, NodeID: n.ID, Opacity: 1, Active: active}

		if showLabels && n.Label != "" && y+1 < rows {
			label := []rune(n.Label)
			start := clamp(x-len(label)/2, 0, cols-1)
			for i, ch := range label {
				if start+i >= cols {
					break
				}
				if isNodeCell(grid[y+1][start+i]) {
					continue
				}
				grid[y+1][start+i] = Cell{Rune: ch, Color: scene.LabelColor, NodeID: n.ID, Opacity: 1}
			}
		}
	}
	return grid
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders graphs as ASCII art for terminal or text-based output"
}

// ContentType returns the MIME type of the output
func (r *ASCIIRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render creates an ASCII representation of the scene
func (r *ASCIIRenderer) Render(scene *Scene, options *OutputOptions) ([]byte, error) {
	w, h := sceneSize(scene, options)
	width := max(int(w/10), 40)  // Scale down for ASCII
	height := max(int(h/20), 20) // Scale down with adjustment for aspect ratio

	inner := Rasterize(scene, width-2, height-2, options.ShowLabels)

	var result strings.Builder
	border := "+" + strings.Repeat("-", width-2) + "+\n"
	result.WriteString(border)
	for i, row := range inner {
		line := make([]rune, 0, len(row))
		for _, c := range row {
			line = append(line, c.Rune)
		}

		// Title and timestamp overlay the first and last rows
		switch {
		case i == 0 && scene.Title != "":
			line = overlay(line, " "+scene.Title+" ")
		case i == len(inner)-1 && options.Timestamp:
			line = overlay(line, " "+time.Now().Format("2006-01-02 15:04")+" ")
		}

		result.WriteRune('|')
		result.WriteString(string(line))
		result.WriteString("|\n")
	}
	result.WriteString(border)

	return []byte(result.String()), nil
}

func overlay(line []rune, text string) []rune {
	for i, ch := range []rune(text) {
		if i+1 >= len(line) {
			break
		}
		line[i+1] = ch
	}
	return line
}

// drawLine plots a line on the grid using Bresenham's algorithm
func drawLine(grid [][]Cell, x1, y1, x2, y2 int, cell Cell) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		// Plot the point if it's in bounds
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) {
			// Stronger edges win where lines cross
			if cur := grid[y1][x1]; cur.Rune == ' ' || (cur.NodeID == "" && cur.Opacity < cell.Opacity) {
				grid[y1][x1] = cell
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			if x1 == x2 {
				break
			}
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			if y1 == y2 {
				break
			}
			err += dx
			y1 += sy
		}
	}
}
