package geometry

import (
	"errors"
	"slices"
	"sort"

	"github.com/chewxy/math32"
)

// ErrDegenerate is returned when a polygon can't be triangulated completely, usually because its outline
// crosses itself.
var ErrDegenerate = errors.New("degenerate polygon")

// Points returns the Shape's outer contour followed by each hole, in order. Triangles returned by Triangulate
// index into this slice.
func (shape Shape) Points() []Point {
	n := len(shape.Outer)
	for _, h := range shape.Holes {
		n += len(h)
	}
	points := make([]Point, 0, n)
	points = append(points, shape.Outer...)
	for _, h := range shape.Holes {
		points = append(points, h...)
	}
	return points
}

// Triangulate splits the Shape into counter-clockwise triangles by ear clipping. Holes are first joined to the
// outer contour with a bridge edge each, turning the Shape into a single simple polygon. The returned index
// triples refer to Shape.Points. If the outline can't be fully resolved, the triangles found so far are returned
// together with ErrDegenerate.
func Triangulate(shape Shape) ([][3]int, error) {

	if len(shape.Outer) < 3 {
		return nil, ErrDegenerate
	}

	points := shape.Points()

	ring := make([]int, len(shape.Outer))
	for i := range ring {
		ring[i] = i
	}

	type hole struct {
		indices   []int
		rightmost int // Position within indices of the vertex with the largest X.
	}

	holes := []hole{}
	offset := len(shape.Outer)

	for _, h := range shape.Holes {

		if len(h) < 3 {
			offset += len(h)
			continue
		}

		hl := hole{indices: make([]int, len(h))}
		for i := range h {
			hl.indices[i] = offset + i
			if points[offset+i].X > points[hl.indices[hl.rightmost]].X {
				hl.rightmost = i
			}
		}
		holes = append(holes, hl)
		offset += len(h)

	}

	// Holes further to the right are bridged first so that later bridges can't cross earlier ones.
	sort.SliceStable(holes, func(i, j int) bool {
		return points[holes[i].indices[holes[i].rightmost]].X > points[holes[j].indices[holes[j].rightmost]].X
	})

	for _, h := range holes {
		ring = bridgeHole(points, ring, h.indices, h.rightmost)
	}

	return earClip(points, ring)

}

// bridgeHole splices a hole into the ring by connecting the hole's rightmost vertex to a ring vertex that is
// visible from it.
func bridgeHole(points []Point, ring, hole []int, rightmost int) []int {

	m := points[hole[rightmost]]

	// Cast a ray from m towards +X and find the closest ring edge it hits.
	bestX := math32.Inf(1)
	var candidate Point
	found := false

	for i := range ring {

		a := points[ring[i]]
		b := points[ring[(i+1)%len(ring)]]

		if a.Y == b.Y || (a.Y < m.Y && b.Y < m.Y) || (a.Y > m.Y && b.Y > m.Y) {
			continue
		}

		x := a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)

		if x < m.X || x >= bestX {
			continue
		}

		bestX = x
		found = true
		// The edge's endpoint with the larger X is the first candidate for the bridge.
		if a.X > b.X {
			candidate = a
		} else {
			candidate = b
		}

	}

	bridge := -1

	if found {

		// Any ring vertex inside the triangle (m, hit, candidate) could block the view of the candidate; the one
		// making the smallest angle with the ray can't be blocked.
		hit := Point{bestX, m.Y}
		bestTan := math32.Inf(1)
		bestDX := math32.Inf(1)

		for i, idx := range ring {

			p := points[idx]
			dx := p.X - m.X

			if dx <= 0 {
				continue
			}

			if p != candidate && !pointInTriangle(p, m, hit, candidate) && !pointInTriangle(p, m, candidate, hit) {
				continue
			}

			// Bridge vertices appear more than once; only a copy whose corner opens towards m will do.
			if !locallyInside(points, ring, i, m) {
				continue
			}

			tan := math32.Abs(p.Y-m.Y) / dx
			if tan < bestTan || (tan == bestTan && dx < bestDX) {
				bestTan = tan
				bestDX = dx
				bridge = i
			}

		}

	}

	if bridge < 0 {
		bridge = nearestIndex(points, ring, m)
	}

	out := make([]int, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:bridge+1]...)
	for i := 0; i <= len(hole); i++ {
		out = append(out, hole[(rightmost+i)%len(hole)])
	}
	out = append(out, ring[bridge])
	out = append(out, ring[bridge+1:]...)

	return out

}

// locallyInside reports whether the direction from the ring vertex at position i towards target points into
// the polygon's interior at that corner.
func locallyInside(points []Point, ring []int, i int, target Point) bool {
	n := len(ring)
	prev, p, next := points[ring[(i+n-1)%n]], points[ring[i]], points[ring[(i+1)%n]]
	in, out, d := p.Sub(prev), next.Sub(p), target.Sub(p)
	if in.Cross(out) > 0 {
		return out.Cross(d) >= 0 && in.Cross(d) >= 0
	}
	return out.Cross(d) >= 0 || in.Cross(d) >= 0
}

func nearestIndex(points []Point, ring []int, target Point) int {
	best := 0
	bestDist := math32.Inf(1)
	for i, idx := range ring {
		d := points[idx].Sub(target)
		if dist := d.Dot(d); dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// earClip triangulates a simple counter-clockwise polygon given as a ring of point indices.
func earClip(points []Point, ring []int) ([][3]int, error) {

	ring = slices.Clone(ring)
	tris := make([][3]int, 0, max(len(ring)-2, 0))

	i := 0
	stalls := 0
	relaxed := false

	for len(ring) > 3 {

		n := len(ring)

		if stalls >= n {
			if relaxed {
				return tris, ErrDegenerate
			}
			// No clean ear left; accept any convex corner to keep going.
			relaxed = true
			stalls = 0
		}

		i %= n
		prev, cur, next := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
		a, b, c := points[prev], points[cur], points[next]

		ab, bc := b.Sub(a), c.Sub(b)
		turn := ab.Cross(bc)

		if math32.Abs(turn) <= 1e-7*ab.Length()*bc.Length() {
			// Collinear or repeated vertex; it adds no area.
			ring = slices.Delete(ring, i, i+1)
			stalls = 0
			continue
		}

		if turn > 0 && (relaxed || isEar(points, ring, prev, cur, next)) {
			tris = append(tris, [3]int{prev, cur, next})
			ring = slices.Delete(ring, i, i+1)
			stalls = 0
			relaxed = false
			continue
		}

		i++
		stalls++

	}

	if len(ring) == 3 {
		a, b, c := points[ring[0]], points[ring[1]], points[ring[2]]
		if b.Sub(a).Cross(c.Sub(a)) > 0 {
			tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
		}
	}

	return tris, nil

}

func isEar(points []Point, ring []int, prev, cur, next int) bool {

	a, b, c := points[prev], points[cur], points[next]
	n := len(ring)

	for j, idx := range ring {
		if idx == prev || idx == cur || idx == next {
			continue
		}
		p := points[idx]
		// Only reflex corners can poke into an ear.
		if p.Sub(points[ring[(j+n-1)%n]]).Cross(points[ring[(j+1)%n]].Sub(p)) > 0 {
			continue
		}
		// Bridge vertices appear twice; a copy sitting on a corner doesn't block the ear.
		if p == a || p == b || p == c {
			continue
		}
		if pointInTriangle(p, a, b, c) {
			return false
		}
	}

	return true

}

// pointInTriangle reports whether p lies inside or on the edge of the counter-clockwise triangle (a, b, c).
func pointInTriangle(p, a, b, c Point) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0 &&
		c.Sub(b).Cross(p.Sub(b)) >= 0 &&
		a.Sub(c).Cross(p.Sub(c)) >= 0
}

// TriangulatedArea returns the total area covered by the triangles given.
func TriangulatedArea(points []Point, tris [][3]int) float32 {
	area := float32(0)
	for _, t := range tris {
		a, b, c := points[t[0]], points[t[1]], points[t[2]]
		area += b.Sub(a).Cross(c.Sub(a)) / 2
	}
	return area
}
