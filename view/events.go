package view

import (
	"github.com/TFMV/forcegraph/models"
)

// Event is an input applied to a view on its driving goroutine.
// Coordinates are screen pixels.
type Event interface {
	apply(v *View) error
}

// PointerMove moves the pointer to (X, Y)
type PointerMove struct{ X, Y float64 }

// PointerDown presses the primary button at (X, Y)
type PointerDown struct{ X, Y float64 }

// PointerUp releases the primary button at (X, Y)
type PointerUp struct{ X, Y float64 }

// PointerLeave reports the pointer left the surface
type PointerLeave struct{}

// Wheel scrolls by DeltaY with the cursor at (X, Y)
type Wheel struct{ X, Y, DeltaY float64 }

// Pinch zooms by Factor around (X, Y)
type Pinch struct{ Factor, X, Y float64 }

// Resize changes the surface size
type Resize struct{ Width, Height float64 }

// Select marks a node as selected; an empty ID clears the selection
type Select struct{ ID string }

// Reheat raises the simulation temperature
type Reheat struct{ Amount float64 }

// Load replaces the graph
type Load struct{ Graph *models.Graph }

func (e PointerMove) apply(v *View) error  { return v.ctrl.PointerMove(e.X, e.Y) }
func (e PointerDown) apply(v *View) error  { return v.ctrl.PointerDown(e.X, e.Y) }
func (e PointerUp) apply(v *View) error    { return v.ctrl.PointerUp(e.X, e.Y) }
func (e PointerLeave) apply(v *View) error { return v.ctrl.PointerLeave() }

func (e Wheel) apply(v *View) error {
	v.ctrl.Wheel(e.X, e.Y, e.DeltaY)
	return nil
}

func (e Pinch) apply(v *View) error {
	v.ctrl.Pinch(e.Factor, e.X, e.Y)
	return nil
}

func (e Resize) apply(v *View) error {
	return v.resize(e.Width, e.Height)
}

func (e Select) apply(v *View) error {
	if e.ID == "" {
		v.ctrl.ClearSelection()
		return nil
	}
	return v.ctrl.Select(e.ID)
}

func (e Reheat) apply(v *View) error {
	v.sim.Reheat(e.Amount)
	return nil
}

func (e Load) apply(v *View) error {
	_, err := v.Load(e.Graph)
	return err
}
