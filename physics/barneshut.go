package physics

import "math"

// maxQuadDepth bounds subdivision; deeper points share a leaf bucket so
// coincident nodes never recurse forever.
const maxQuadDepth = 32

// quadNode is a square cell of the Barnes-Hut quadtree. Charge plays the
// role of mass and the barycentre is charge-weighted.
type quadNode struct {
	// Spatial bounds
	x, y, size float64

	// Charge-weighted centre
	centerX, centerY float64
	charge           float64

	// Leaf bodies; more than one only at maxQuadDepth
	bodies []int
	isLeaf bool
	depth  int
	nw, ne, sw, se *quadNode
}

func newQuadNode(x, y, size float64, depth int) *quadNode {
	return &quadNode{x: x, y: y, size: size, isLeaf: true, depth: depth}
}

// buildQuadTree inserts every body into a square root cell that covers them all
func buildQuadTree(bodies []body) *quadNode {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX, maxX = math.Min(minX, b.x), math.Max(maxX, b.x)
		minY, maxY = math.Min(minY, b.y), math.Max(maxY, b.y)
	}
	size := math.Max(maxX-minX, maxY-minY)*1.01 + 1

	root := newQuadNode(minX-0.5, minY-0.5, size, 0)
	for i, b := range bodies {
		root.insert(bodies, i, b.x, b.y, b.charge)
	}
	return root
}

func (q *quadNode) insert(bodies []body, i int, px, py, charge float64) {
	total := q.charge + charge
	if total > 0 {
		q.centerX = (q.centerX*q.charge + px*charge) / total
		q.centerY = (q.centerY*q.charge + py*charge) / total
	} else {
		q.centerX, q.centerY = px, py
	}
	q.charge = total

	if q.isLeaf {
		if len(q.bodies) == 0 || q.depth >= maxQuadDepth {
			q.bodies = append(q.bodies, i)
			return
		}

		// Split and push the resident bodies down a level
		half := q.size / 2
		q.nw = newQuadNode(q.x, q.y, half, q.depth+1)
		q.ne = newQuadNode(q.x+half, q.y, half, q.depth+1)
		q.sw = newQuadNode(q.x, q.y+half, half, q.depth+1)
		q.se = newQuadNode(q.x+half, q.y+half, half, q.depth+1)
		q.isLeaf = false
		resident := q.bodies
		q.bodies = nil
		for _, r := range resident {
			b := bodies[r]
			q.quadrant(b.x, b.y).insert(bodies, r, b.x, b.y, b.charge)
		}
	}

	q.quadrant(px, py).insert(bodies, i, px, py, charge)
}

func (q *quadNode) quadrant(px, py float64) *quadNode {
	half := q.size / 2
	midX, midY := q.x+half, q.y+half
	if px < midX {
		if py < midY {
			return q.nw
		}
		return q.sw
	}
	if py < midY {
		return q.ne
	}
	return q.se
}

func (q *quadNode) contains(px, py float64) bool {
	return px >= q.x && px < q.x+q.size && py >= q.y && py < q.y+q.size
}

// force accumulates the push on body i from every charge in this cell.
// A cell is treated as a single charge when it does not contain i and
// size/distance < theta.
func (q *quadNode) force(bodies []body, i int, theta, alpha, minDist2 float64) (float64, float64) {
	if q.charge == 0 {
		return 0, 0
	}
	px, py := bodies[i].x, bodies[i].y

	if q.isLeaf {
		fx, fy := 0.0, 0.0
		for _, j := range q.bodies {
			if j == i {
				continue
			}
			dx, dy := px-bodies[j].x, py-bodies[j].y
			if dx == 0 && dy == 0 {
				dx, dy = pairOffset(i, j)
			}
			jx, jy := repulse(dx, dy, bodies[j].charge, alpha, minDist2)
			fx += jx
			fy += jy
		}
		return fx, fy
	}

	dx, dy := px-q.centerX, py-q.centerY
	d2 := dx*dx + dy*dy
	if !q.contains(px, py) && d2 > 0 && q.size*q.size < theta*theta*d2 {
		return repulse(dx, dy, q.charge, alpha, minDist2)
	}

	fx, fy := 0.0, 0.0
	for _, child := range [...]*quadNode{q.nw, q.ne, q.sw, q.se} {
		cx, cy := child.force(bodies, i, theta, alpha, minDist2)
		fx += cx
		fy += cy
	}
	return fx, fy
}

// applyRepulsionBarnesHut approximates applyRepulsion in O(n log n)
func applyRepulsionBarnesHut(bodies []body, alpha, minDist, theta float64, acc []vec) {
	if len(bodies) < 2 {
		return
	}
	root := buildQuadTree(bodies)
	minDist2 := minDist * minDist
	for i := range bodies {
		fx, fy := root.force(bodies, i, theta, alpha, minDist2)
		acc[i].x += fx
		acc[i].y += fy
	}
}
