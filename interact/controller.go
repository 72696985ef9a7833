// Package interact turns pointer gestures into simulation and view changes.
//
// The Controller is an explicit state machine (Idle, Hovering, Dragging)
// with panning as an overlay gesture. It owns the ViewTransform; hovering
// and selection are presentation flags that never touch the simulation.
package interact

import (
	"math"

	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
)

// State is the pointer state of the controller
type State int

const (
	Idle State = iota
	Hovering
	Dragging
)

func (s State) String() string {
	switch s {
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Simulation is the part of the physics engine the controller drives
type Simulation interface {
	NodeAt(x, y float64) (string, bool)
	Pin(id string, x, y float64) error
	Unpin(id string) error
	Reheat(amount float64)
	Temperature() float64
}

// Presentation carries the flags the render pass needs
type Presentation struct {
	Hovered  string `json:"hovered,omitempty"`
	Dragged  string `json:"dragged,omitempty"`
	Selected string `json:"selected,omitempty"`
	Panning  bool   `json:"panning,omitempty"`
}

// Focus returns the node whose edges are emphasised, the dragged node
// taking precedence over the hovered one.
func (p Presentation) Focus() string {
	if p.Dragged != "" {
		return p.Dragged
	}
	return p.Hovered
}

// Activation is emitted when a node is clicked
type Activation struct {
	ID   string      `json:"id"`
	Node models.Node `json:"node"`
}

// Controller interprets pointer events. It is driven from a single
// goroutine, the same one that steps the simulation.
type Controller struct {
	cfg    Config
	logger *zap.SugaredLogger
	sim    Simulation
	nodes  map[string]models.Node

	state     State
	target    string // hovered or dragged node
	selected  string
	transform ViewTransform

	pressed      bool
	panning      bool
	pressTarget  string
	downX, downY float64
	lastX, lastY float64
	travel       float64

	onActivate []func(Activation)
}

// New creates a controller bound to sim. sim may be nil until SetGraph.
func New(sim Simulation, cfg Config, log *zap.SugaredLogger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:    cfg,
		logger: logger.OrNop(log),
		sim:    sim,
		nodes:  map[string]models.Node{},
	}
	c.SetTransform(Identity())
	return c, nil
}

// SetGraph binds a freshly initialized simulation and its node table, and
// clears all gesture state. The view transform is kept.
func (c *Controller) SetGraph(sim Simulation, g *models.Graph) {
	c.sim = sim
	c.nodes = make(map[string]models.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		c.nodes[n.ID] = n
	}
	c.Reset()
}

// Reset returns to Idle and drops hover, drag, pan and selection
func (c *Controller) Reset() {
	c.state = Idle
	c.target = ""
	c.selected = ""
	c.pressed = false
	c.panning = false
	c.pressTarget = ""
	c.travel = 0
}

// OnActivate registers a callback for node clicks
func (c *Controller) OnActivate(fn func(Activation)) {
	c.onActivate = append(c.onActivate, fn)
}

// State returns the current pointer state
func (c *Controller) State() State {
	return c.state
}

// Transform returns the current view transform
func (c *Controller) Transform() ViewTransform {
	return c.transform
}

// SetTransform replaces the view transform, clamping the scale
func (c *Controller) SetTransform(t ViewTransform) {
	t.Scale = math.Min(c.cfg.ScaleMax, math.Max(c.cfg.ScaleMin, t.Scale))
	c.transform = t
}

// Flags returns the presentation flags for the next render pass
func (c *Controller) Flags() Presentation {
	p := Presentation{Selected: c.selected, Panning: c.panning}
	switch c.state {
	case Hovering:
		p.Hovered = c.target
	case Dragging:
		p.Dragged = c.target
	}
	return p
}

// Select marks a node as the externally chosen active node
func (c *Controller) Select(id string) error {
	if _, ok := c.nodes[id]; !ok {
		return errors.Wrapf(errors.ErrUnknownNode, "select %q", id)
	}
	c.selected = id
	return nil
}

// ClearSelection removes the active-node highlight
func (c *Controller) ClearSelection() {
	c.selected = ""
}

func (c *Controller) hitTest(x, y float64) (string, bool) {
	if c.sim == nil {
		return "", false
	}
	return c.sim.NodeAt(c.transform.Invert(x, y))
}

// PointerMove handles pointer motion in screen coordinates
func (c *Controller) PointerMove(x, y float64) error {
	if c.pressed {
		c.travel = math.Max(c.travel, math.Hypot(x-c.downX, y-c.downY))
	}

	switch {
	case c.state == Dragging:
		sx, sy := c.transform.Invert(x, y)
		if err := c.sim.Pin(c.target, sx, sy); err != nil {
			return errors.Wrap(err, "drag")
		}
		if t := c.sim.Temperature(); t < c.cfg.DragTemperature {
			c.sim.Reheat(c.cfg.DragTemperature - t)
		}
	case c.panning:
		c.transform = c.transform.Translate(x-c.lastX, y-c.lastY)
	default:
		if id, ok := c.hitTest(x, y); ok {
			c.state, c.target = Hovering, id
		} else {
			c.state, c.target = Idle, ""
		}
	}

	c.lastX, c.lastY = x, y
	return nil
}

// PointerDown starts a drag on a node or a pan on the background
func (c *Controller) PointerDown(x, y float64) error {
	if c.pressed {
		return nil
	}
	c.pressed = true
	c.downX, c.downY = x, y
	c.lastX, c.lastY = x, y
	c.travel = 0

	id, ok := c.hitTest(x, y)
	if !ok {
		c.pressTarget = ""
		c.panning = true
		return nil
	}

	c.pressTarget = id
	c.state, c.target = Dragging, id
	c.sim.Reheat(c.cfg.DragReheat)
	sx, sy := c.transform.Invert(x, y)
	if err := c.sim.Pin(id, sx, sy); err != nil {
		c.state, c.target = Idle, ""
		return errors.Wrap(err, "drag start")
	}
	c.logger.Debugw("Drag started", logger.FieldNode, id)
	return nil
}

// PointerUp ends a drag or pan. A press that stayed within the click
// tolerance on a node emits an Activation.
func (c *Controller) PointerUp(x, y float64) error {
	if !c.pressed {
		return nil
	}
	c.travel = math.Max(c.travel, math.Hypot(x-c.downX, y-c.downY))
	click := c.pressTarget != "" && c.travel < c.cfg.ClickTolerance
	pressTarget := c.pressTarget

	var err error
	if c.state == Dragging {
		if uerr := c.sim.Unpin(c.target); uerr != nil {
			err = errors.Wrap(uerr, "drag end")
		}
		c.logger.Debugw("Drag ended", logger.FieldNode, c.target)
	}

	c.pressed = false
	c.panning = false
	c.pressTarget = ""
	c.lastX, c.lastY = x, y

	if id, ok := c.hitTest(x, y); ok {
		c.state, c.target = Hovering, id
	} else {
		c.state, c.target = Idle, ""
	}

	if click {
		c.activate(pressTarget)
	}
	return err
}

// PointerLeave ends hover, drag and pan
func (c *Controller) PointerLeave() error {
	var err error
	if c.state == Dragging {
		if uerr := c.sim.Unpin(c.target); uerr != nil {
			err = errors.Wrap(uerr, "pointer leave")
		}
	}
	c.state, c.target = Idle, ""
	c.pressed = false
	c.panning = false
	c.pressTarget = ""
	return err
}

// Wheel zooms around the cursor. Positive deltaY zooms out.
func (c *Controller) Wheel(x, y, deltaY float64) {
	c.Pinch(math.Exp2(-deltaY*c.cfg.WheelSensitivity), x, y)
}

// Pinch zooms by factor around (cx, cy), keeping the scale in bounds
func (c *Controller) Pinch(factor, cx, cy float64) {
	c.transform = c.transform.ZoomAt(factor, cx, cy, c.cfg.ScaleMin, c.cfg.ScaleMax)
}

func (c *Controller) activate(id string) {
	node, ok := c.nodes[id]
	if !ok {
		node = models.Node{ID: id}
	}
	c.logger.Debugw("Node activated", logger.FieldNode, id)
	for _, fn := range c.onActivate {
		fn(Activation{ID: id, Node: node})
	}
}
