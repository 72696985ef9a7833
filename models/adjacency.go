package models

// Adjacency is the undirected neighbour relation derived from an edge set.
// Self-loops count toward degree but are not neighbours.
type Adjacency struct {
	neighbours map[string]map[string]struct{}
	degree     map[string]int
}

// BuildAdjacency derives adjacency from the edges of g.
// Edges whose endpoints are not in the node set are ignored.
func BuildAdjacency(g *Graph) *Adjacency {
	a := &Adjacency{
		neighbours: make(map[string]map[string]struct{}, len(g.Nodes)),
		degree:     make(map[string]int, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		a.neighbours[n.ID] = make(map[string]struct{})
	}

	for _, e := range g.Edges {
		src, okSrc := a.neighbours[e.Source]
		dst, okDst := a.neighbours[e.Target]
		if !okSrc || !okDst {
			continue
		}
		a.degree[e.Source]++
		a.degree[e.Target]++
		if e.Source == e.Target {
			continue
		}
		src[e.Target] = struct{}{}
		dst[e.Source] = struct{}{}
	}
	return a
}

// Adjacent reports whether x and y share an edge
func (a *Adjacency) Adjacent(x, y string) bool {
	_, ok := a.neighbours[x][y]
	return ok
}

// Degree returns the number of edge endpoints at id
func (a *Adjacency) Degree(id string) int {
	return a.degree[id]
}

// Neighbours returns the ids adjacent to id, in no particular order
func (a *Adjacency) Neighbours(id string) []string {
	out := make([]string, 0, len(a.neighbours[id]))
	for n := range a.neighbours[id] {
		out = append(out, n)
	}
	return out
}
