package interact

import "math"

// ViewTransform maps simulation coordinates to screen coordinates:
// screen = sim*Scale + (TX, TY).
type ViewTransform struct {
	Scale float64 `json:"k"`
	TX    float64 `json:"x"`
	TY    float64 `json:"y"`
}

// Identity is the transform a new session starts with
func Identity() ViewTransform {
	return ViewTransform{Scale: 1}
}

// Apply maps a simulation point to the screen
func (t ViewTransform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TX, y*t.Scale + t.TY
}

// Invert maps a screen point back into simulation space
func (t ViewTransform) Invert(x, y float64) (float64, float64) {
	return (x - t.TX) / t.Scale, (y - t.TY) / t.Scale
}

// Translate shifts the view by a screen-space delta
func (t ViewTransform) Translate(dx, dy float64) ViewTransform {
	t.TX += dx
	t.TY += dy
	return t
}

// ZoomAt multiplies the scale by factor, clamped to [lo, hi], keeping the
// simulation point under (cx, cy) fixed on screen. A factor that
// underflowed to 0 or overflowed to +Inf snaps to the matching bound.
func (t ViewTransform) ZoomAt(factor, cx, cy, lo, hi float64) ViewTransform {
	var scale float64
	switch {
	case math.IsNaN(factor) || factor < 0:
		return t
	case factor == 0:
		scale = lo
	case math.IsInf(factor, 1):
		scale = hi
	default:
		scale = math.Min(hi, math.Max(lo, t.Scale*factor))
	}
	px, py := t.Invert(cx, cy)
	t.Scale = scale
	t.TX = cx - px*t.Scale
	t.TY = cy - py*t.Scale
	return t
}
