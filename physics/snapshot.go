package physics

// NodeState is the position and velocity of one node at a tick
type NodeState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Pinned bool    `json:"pinned,omitempty"`
}

// Snapshot is an immutable copy of the simulation state after a step
type Snapshot struct {
	Tick        int         `json:"tick"`
	Temperature float64     `json:"temperature"`
	Settled     bool        `json:"settled"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Nodes       []NodeState `json:"nodes"`
}

// Snapshot copies the current state
func (s *Simulation) Snapshot() Snapshot {
	nodes := make([]NodeState, len(s.nodes))
	for i, n := range s.nodes {
		nodes[i] = NodeState{ID: n.id, X: n.x, Y: n.y, VX: n.vx, VY: n.vy, Pinned: n.pinned}
	}
	return Snapshot{
		Tick:        s.tick,
		Temperature: s.temperature,
		Settled:     s.IsSettled(),
		Width:       s.width,
		Height:      s.height,
		Nodes:       nodes,
	}
}

// ByID indexes the snapshot nodes by id
func (s Snapshot) ByID() map[string]NodeState {
	m := make(map[string]NodeState, len(s.Nodes))
	for _, n := range s.Nodes {
		m[n.ID] = n
	}
	return m
}

// Bounds returns the bounding box of all node centres
func (s Snapshot) Bounds() (minX, minY, maxX, maxY float64) {
	if len(s.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = s.Nodes[0].X, s.Nodes[0].Y
	maxX, maxY = minX, minY
	for _, n := range s.Nodes[1:] {
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}
