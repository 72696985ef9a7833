package physics

import (
	"iter"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
)

const (
	// initialRadius scales the phyllotaxis spiral used for first placement
	initialRadius = 10.0
	// jitterScale is the amplitude of the seeded noise added to the spiral
	jitterScale = initialRadius / 2
)

// nodeState is the mutable per-node state of the simulation
type nodeState struct {
	id         string
	x, y       float64
	vx, vy     float64
	pinned     bool
	pinX, pinY float64
}

// Simulation owns node positions and velocities and advances them one
// tick at a time under the combined force model. It is not safe for
// concurrent use; one goroutine drives it.
type Simulation struct {
	cfg    Config
	logger *zap.SugaredLogger

	width, height float64
	graph         *models.Graph
	index         map[string]int
	nodes         []nodeState
	bodies        []body
	radii         []float64
	links         []link
	acc           []vec

	temperature float64
	tick        int
	diagnostics []*models.GraphDataError
	degenerate  map[string]bool
}

// New creates a simulation with the given configuration.
// The configuration is validated here; a nil logger disables logging.
func New(cfg Config, log *zap.SugaredLogger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulation{
		cfg:        cfg,
		logger:     logger.OrNop(log),
		graph:      &models.Graph{},
		index:      map[string]int{},
		degenerate: map[string]bool{},
	}, nil
}

// Config returns the configuration the simulation was created with
func (s *Simulation) Config() Config {
	return s.cfg
}

// Initialize loads a node and edge set, places every node on a seeded
// spiral around the viewport centre and sets the temperature to 1.
//
// Edges with unknown endpoints are excluded and reported; they never abort
// the run. The returned error is non-nil only for a degenerate viewport.
func (s *Simulation) Initialize(nodes []models.Node, edges []models.Edge, width, height float64) ([]*models.GraphDataError, error) {
	return s.Load(&models.Graph{Nodes: nodes, Edges: edges}, width, height)
}

// Load is Initialize for a whole graph; name, id and cluster colours are
// carried over to Graph().
func (s *Simulation) Load(graph *models.Graph, width, height float64) ([]*models.GraphDataError, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil, errors.NewInvalidConfigError("viewport %vx%v must be positive and finite", width, height)
	}

	g, diags := models.Validate(graph)
	s.width, s.height = width, height
	s.graph = g
	s.diagnostics = diags
	s.degenerate = map[string]bool{}
	s.tick = 0
	s.temperature = 1

	for _, d := range diags {
		s.logger.Warnw("Graph data excluded", d.ToLogFields()...)
	}

	n := len(g.Nodes)
	s.index = make(map[string]int, n)
	s.nodes = make([]nodeState, n)
	s.bodies = make([]body, n)
	s.radii = make([]float64, n)
	s.acc = make([]vec, n)

	noise := opensimplex.New(s.cfg.Seed)
	cx, cy := width/2, height/2
	for i := range g.Nodes {
		node := &g.Nodes[i]
		s.index[node.ID] = i

		r := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * goldenAngle
		jx := noise.Eval2(float64(i)*0.37, 0.5) * jitterScale
		jy := noise.Eval2(0.5, float64(i)*0.37) * jitterScale

		s.nodes[i] = nodeState{
			id: node.ID,
			x:  cx + r*math.Cos(angle) + jx,
			y:  cy + r*math.Sin(angle) + jy,
		}
		s.radii[i] = node.Radius()
		s.bodies[i] = body{
			charge: s.cfg.charge(node.EffectiveImportance()),
			radius: node.Radius() + s.cfg.CollisionPadding,
		}
	}

	adj := models.BuildAdjacency(g)
	s.links = s.links[:0]
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		src, tgt := s.index[e.Source], s.index[e.Target]
		ds, dt := float64(adj.Degree(e.Source)), float64(adj.Degree(e.Target))
		w := e.EffectiveWeight()
		s.links = append(s.links, link{
			source:   src,
			target:   tgt,
			rest:     s.cfg.restDistance(w),
			strength: s.cfg.linkStrength(w),
			bias:     ds / (ds + dt),
		})
	}

	s.logger.Infow("Simulation initialized",
		logger.FieldGraph, g.ID,
		logger.FieldNodes, n,
		logger.FieldEdges, len(s.links),
		"excluded", len(diags),
		"barnes_hut", s.useBarnesHut(),
	)
	return diags, nil
}

// Graph returns the validated graph the simulation was initialized with
func (s *Simulation) Graph() *models.Graph {
	return s.graph
}

// Diagnostics returns the data errors found by the last Initialize
func (s *Simulation) Diagnostics() []*models.GraphDataError {
	return s.diagnostics
}

// Temperature returns the current cooling parameter in [0,1]
func (s *Simulation) Temperature() float64 {
	return s.temperature
}

// Tick returns the number of steps taken since Initialize
func (s *Simulation) Tick() int {
	return s.tick
}

// Viewport returns the current width and height
func (s *Simulation) Viewport() (float64, float64) {
	return s.width, s.height
}

// IsSettled reports whether the temperature has reached the floor.
// An empty simulation is always settled.
func (s *Simulation) IsSettled() bool {
	return len(s.nodes) == 0 || s.temperature <= s.cfg.MinTemperature
}

func (s *Simulation) useBarnesHut() bool {
	return s.cfg.BarnesHutThreshold > 0 && len(s.nodes) > s.cfg.BarnesHutThreshold
}

// Step advances the simulation by one tick and returns the new snapshot.
// A settled simulation still integrates, so dragging keeps working after
// cooling; an empty one is a no-op.
func (s *Simulation) Step() Snapshot {
	if len(s.nodes) == 0 {
		return s.Snapshot()
	}

	alpha := s.temperature
	for i := range s.nodes {
		s.bodies[i].x, s.bodies[i].y = s.nodes[i].x, s.nodes[i].y
		s.bodies[i].pinned = s.nodes[i].pinned
		s.acc[i] = vec{}
	}

	applyLinks(s.bodies, s.links, alpha, s.acc)
	if s.useBarnesHut() {
		applyRepulsionBarnesHut(s.bodies, alpha, s.cfg.MinDistance, s.cfg.Theta, s.acc)
	} else {
		applyRepulsion(s.bodies, alpha, s.cfg.MinDistance, s.acc)
	}
	applyCentering(s.bodies, s.width/2, s.height/2, s.cfg.CenteringStrength, alpha, s.acc)
	applyCollision(s.bodies, s.cfg.CollisionStrength, s.acc)

	s.integrate()

	s.temperature = math.Max(s.cfg.MinTemperature, s.temperature*s.cfg.DecayRate)
	s.tick++
	return s.Snapshot()
}

// integrate applies the accumulated forces. Pinned nodes snap to their pin;
// a node whose update is not finite keeps its previous position.
func (s *Simulation) integrate() {
	damping := s.cfg.VelocityDamping
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.pinned {
			n.x, n.y = n.pinX, n.pinY
			n.vx, n.vy = 0, 0
			continue
		}

		vx := (n.vx + s.acc[i].x) * damping
		vy := (n.vy + s.acc[i].y) * damping
		x, y := n.x+vx, n.y+vy
		if !finite(vx, vy, x, y) {
			if !s.degenerate[n.id] {
				s.degenerate[n.id] = true
				s.logger.Warnw("Non-finite position, keeping previous value",
					logger.FieldNode, n.id,
					logger.FieldTick, s.tick,
				)
			}
			n.vx, n.vy = 0, 0
			continue
		}
		n.x, n.y, n.vx, n.vy = x, y, vx, vy
	}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Reheat raises the temperature by amount, capped at 1.
// Non-positive or non-finite amounts are ignored.
func (s *Simulation) Reheat(amount float64) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return
	}
	s.temperature = math.Min(1, s.temperature+amount)
}

// Pin fixes a node at (x, y). The node moves there immediately and stays
// until Unpin.
func (s *Simulation) Pin(id string, x, y float64) error {
	i, ok := s.index[id]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownNode, "pin %q", id)
	}
	if !finite(x, y) {
		return errors.Newf("pin %q: position (%v, %v) is not finite", id, x, y)
	}
	n := &s.nodes[i]
	n.pinned = true
	n.pinX, n.pinY = x, y
	n.x, n.y = x, y
	n.vx, n.vy = 0, 0
	return nil
}

// Unpin releases a pinned node at its current position
func (s *Simulation) Unpin(id string) error {
	i, ok := s.index[id]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownNode, "unpin %q", id)
	}
	s.nodes[i].pinned = false
	return nil
}

// Resize changes the viewport; the centering target follows it
func (s *Simulation) Resize(width, height float64) error {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return errors.NewInvalidConfigError("viewport %vx%v must be positive and finite", width, height)
	}
	s.width, s.height = width, height
	return nil
}

// NodeAt returns the id of the topmost node whose disc contains (x, y).
// Later nodes are drawn on top, so they win ties.
func (s *Simulation) NodeAt(x, y float64) (string, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n := &s.nodes[i]
		dx, dy := x-n.x, y-n.y
		if dx*dx+dy*dy <= s.radii[i]*s.radii[i] {
			return n.id, true
		}
	}
	return "", false
}

// Position returns the current position of a node
func (s *Simulation) Position(id string) (float64, float64, bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, 0, false
	}
	return s.nodes[i].x, s.nodes[i].y, true
}

// Run returns a lazy sequence of snapshots, one per step, that ends when the
// simulation settles or after maxSteps steps (maxSteps <= 0 means no cap).
// Each range over the sequence continues from the current state, so it can
// be resumed after a Reheat.
func (s *Simulation) Run(maxSteps int) iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		for n := 0; maxSteps <= 0 || n < maxSteps; n++ {
			if s.IsSettled() {
				return
			}
			if !yield(s.Step()) {
				return
			}
		}
	}
}

// Settle steps until settled or maxSteps is reached and returns the final
// snapshot.
func (s *Simulation) Settle(maxSteps int) Snapshot {
	for range s.Run(maxSteps) {
	}
	return s.Snapshot()
}
