package physics

import "math"

// goldenAngle spreads coincident tie-break directions and the initial spiral
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// jiggleLength is the length of the tie-break offset for coincident nodes
const jiggleLength = 1e-3

type vec struct {
	x, y float64
}

// body is the per-node input to the force functions
type body struct {
	x, y   float64
	charge float64
	radius float64 // collision radius, padding included
	pinned bool
}

// link is a resolved edge between two body indices
type link struct {
	source, target int
	rest           float64
	strength       float64
	bias           float64 // share of the correction taken by the target
}

// pairOffset returns a stand-in for (p_i - p_j) when the two nodes coincide.
// The direction depends only on the pair, and swapping i and j negates it.
func pairOffset(i, j int) (float64, float64) {
	lo, hi, sign := i, j, 1.0
	if lo > hi {
		lo, hi, sign = j, i, -1.0
	}
	angle := float64(lo*31+hi*17+1) * goldenAngle
	return sign * jiggleLength * math.Cos(angle), sign * jiggleLength * math.Sin(angle)
}

// applyLinks pulls or pushes each linked pair toward its rest length.
// The correction is split by degree so hubs move less than leaves.
func applyLinks(bodies []body, links []link, alpha float64, acc []vec) {
	for _, l := range links {
		s, t := &bodies[l.source], &bodies[l.target]
		dx, dy := t.x-s.x, t.y-s.y
		if dx == 0 && dy == 0 {
			dx, dy = pairOffset(l.target, l.source)
		}
		dist := math.Sqrt(dx*dx + dy*dy)
		k := (dist - l.rest) / dist * alpha * l.strength
		dx, dy = dx*k, dy*k

		acc[l.target].x -= dx * l.bias
		acc[l.target].y -= dy * l.bias
		acc[l.source].x += dx * (1 - l.bias)
		acc[l.source].y += dy * (1 - l.bias)
	}
}

// repulse returns the push on body i from a charge at distance (dx, dy)
func repulse(dx, dy, charge, alpha, minDist2 float64) (float64, float64) {
	d2 := math.Max(dx*dx+dy*dy, minDist2)
	f := charge * alpha / d2
	return dx * f, dy * f
}

// applyRepulsion computes all pairwise charge forces exactly
func applyRepulsion(bodies []body, alpha, minDist float64, acc []vec) {
	minDist2 := minDist * minDist
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			dx, dy := bodies[i].x-bodies[j].x, bodies[i].y-bodies[j].y
			if dx == 0 && dy == 0 {
				dx, dy = pairOffset(i, j)
			}
			fx, fy := repulse(dx, dy, bodies[j].charge, alpha, minDist2)
			acc[i].x += fx
			acc[i].y += fy
			fx, fy = repulse(-dx, -dy, bodies[i].charge, alpha, minDist2)
			acc[j].x += fx
			acc[j].y += fy
		}
	}
}

// applyCentering draws free nodes toward (cx, cy) in proportion to their offset
func applyCentering(bodies []body, cx, cy, strength, alpha float64, acc []vec) {
	k := strength * alpha
	for i := range bodies {
		if bodies[i].pinned {
			continue
		}
		acc[i].x += (cx - bodies[i].x) * k
		acc[i].y += (cy - bodies[i].y) * k
	}
}

// applyCollision separates overlapping pairs. The heavier (larger) node of a
// pair takes the smaller share of the correction.
func applyCollision(bodies []body, strength float64, acc []vec) {
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			a, b := &bodies[i], &bodies[j]
			r := a.radius + b.radius
			dx, dy := a.x-b.x, a.y-b.y
			d2 := dx*dx + dy*dy
			if d2 >= r*r {
				continue
			}
			if d2 == 0 {
				dx, dy = pairOffset(i, j)
				d2 = dx*dx + dy*dy
			}
			d := math.Sqrt(d2)
			k := (r - d) / d * strength
			dx, dy = dx*k, dy*k

			ra, rb := a.radius*a.radius, b.radius*b.radius
			share := rb / (ra + rb)
			if ra+rb == 0 {
				share = 0.5
			}
			acc[i].x += dx * share
			acc[i].y += dy * share
			acc[j].x -= dx * (1 - share)
			acc[j].y -= dy * (1 - share)
		}
	}
}
