// Package view ties one simulation, one interaction controller and one
// render adapter into a frame loop.
//
// Events may be posted from any goroutine; they are queued and applied by
// whichever goroutine calls Frame or Run, which is also the only goroutine
// that touches the simulation.
package view

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
)

// DefaultEventBuffer is the event queue length used when Options leaves it unset
const DefaultEventBuffer = 256

// ErrQueueFull is returned by Post when the event queue is saturated
var ErrQueueFull = errors.New("view event queue full")

// Options configures a View
type Options struct {
	Width, Height float64
	Physics       physics.Config
	Interact      interact.Config
	Palette       *render.Palette
	EventBuffer   int
}

// DefaultOptions returns options for an 800x600 surface
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      600,
		Physics:     physics.DefaultConfig(),
		Interact:    interact.DefaultConfig(),
		EventBuffer: DefaultEventBuffer,
	}
}

// View is a live, interactive rendering of one graph
type View struct {
	opts   Options
	logger *zap.SugaredLogger

	sim     *physics.Simulation
	ctrl    *interact.Controller
	adapter *render.Adapter

	events   chan Event
	dirty    bool
	disposed atomic.Bool

	onError []func(error)
}

// New creates a view showing an empty graph. Call Load to show one.
func New(opts Options, log *zap.SugaredLogger) (*View, error) {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.Palette == nil {
		opts.Palette = render.DefaultPalette()
	}
	log = logger.OrNop(log)

	sim, err := physics.New(opts.Physics, log.Named("physics"))
	if err != nil {
		return nil, errors.Wrap(err, "physics")
	}
	empty := models.NewGraph("")
	if _, err := sim.Load(empty, opts.Width, opts.Height); err != nil {
		return nil, err
	}
	ctrl, err := interact.New(sim, opts.Interact, log.Named("interact"))
	if err != nil {
		return nil, errors.Wrap(err, "interact")
	}
	ctrl.SetGraph(sim, empty)

	v := &View{
		opts:    opts,
		logger:  log,
		sim:     sim,
		ctrl:    ctrl,
		adapter: render.NewAdapter(sim.Graph(), opts.Palette, log.Named("render")),
		events:  make(chan Event, opts.EventBuffer),
		dirty:   true,
	}
	return v, nil
}

// Load replaces the displayed graph. The simulation restarts hot, gesture
// state is cleared and the view transform is kept. Records that had to be
// excluded are returned, and never fail the load.
func (v *View) Load(g *models.Graph) ([]*models.GraphDataError, error) {
	if v.disposed.Load() {
		return nil, errors.ErrDisposed
	}
	if g == nil {
		g = models.NewGraph("")
	}
	diags, err := v.sim.Load(g, v.opts.Width, v.opts.Height)
	if err != nil {
		return nil, err
	}
	v.ctrl.SetGraph(v.sim, v.sim.Graph())

	v.adapter.Dispose()
	v.adapter = render.NewAdapter(v.sim.Graph(), v.opts.Palette, v.logger.Named("render"))
	v.dirty = true

	v.logger.Infow("Graph loaded",
		logger.FieldGraph, g.ID,
		logger.FieldNodes, len(v.sim.Graph().Nodes),
		logger.FieldEdges, len(v.sim.Graph().Edges),
		"excluded", len(diags),
	)
	return diags, nil
}

func (v *View) resize(w, h float64) error {
	if err := v.sim.Resize(w, h); err != nil {
		return err
	}
	v.opts.Width, v.opts.Height = w, h
	return nil
}

// Post queues an event without blocking
func (v *View) Post(e Event) error {
	if v.disposed.Load() {
		return errors.ErrDisposed
	}
	select {
	case v.events <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// OnActivate registers a callback for node clicks. Callbacks run on the
// frame goroutine.
func (v *View) OnActivate(fn func(interact.Activation)) {
	v.ctrl.OnActivate(fn)
}

// OnError registers a callback for events that could not be applied
func (v *View) OnError(fn func(error)) {
	v.onError = append(v.onError, fn)
}

// Simulation returns the underlying simulation
func (v *View) Simulation() *physics.Simulation {
	return v.sim
}

// Controller returns the underlying interaction controller
func (v *View) Controller() *interact.Controller {
	return v.ctrl
}

// Palette returns the palette the view draws with
func (v *View) Palette() *render.Palette {
	return v.adapter.Palette()
}

// drain applies every queued event and reports whether any arrived
func (v *View) drain() bool {
	applied := false
	for {
		select {
		case e := <-v.events:
			applied = true
			if err := e.apply(v); err != nil {
				v.logger.Warnw("Event rejected", "event", e, logger.FieldError, err)
				for _, fn := range v.onError {
					fn(err)
				}
			}
		default:
			return applied
		}
	}
}

// advance applies queued events and steps the simulation once unless it
// has settled. It reports whether the next frame differs from the last.
func (v *View) advance() bool {
	changed := v.drain() || v.dirty
	v.dirty = false
	if !v.sim.IsSettled() {
		v.sim.Step()
		changed = true
	}
	return changed
}

func (v *View) render() (*render.Scene, error) {
	return v.adapter.Frame(v.sim.Snapshot(), v.ctrl.Transform(), v.ctrl.Flags())
}

// Frame applies queued events, steps the simulation unless settled and
// returns the scene to draw.
func (v *View) Frame() (*render.Scene, error) {
	if v.disposed.Load() {
		return nil, errors.ErrDisposed
	}
	v.advance()
	return v.render()
}

// Run drives the view at fps frames per second until ctx is done or sink
// returns an error. sink is called only for frames that changed, so a
// settled, idle view costs nothing but the ticker.
func (v *View) Run(ctx context.Context, fps int, sink func(*render.Scene) error) error {
	if fps <= 0 {
		return errors.NewInvalidConfigError("fps must be positive, got %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if v.disposed.Load() {
			return errors.ErrDisposed
		}
		if !v.advance() {
			continue
		}
		scene, err := v.render()
		if err != nil {
			return err
		}
		if err := sink(scene); err != nil {
			return errors.Wrap(err, "frame sink")
		}
	}
}

// Dispose releases the adapter's handles. Later calls to Frame, Post and
// Load fail with errors.ErrDisposed. Call it from the frame goroutine.
func (v *View) Dispose() {
	if v.disposed.Swap(true) {
		return
	}
	v.adapter.Dispose()
	v.logger.Debugw("View disposed")
}
