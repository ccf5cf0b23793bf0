package geometry

import (
	"github.com/chewxy/math32"
	"github.com/solarlune/donutfield/internal/engine"
)

// ExtrudeOptions controls how a flat Shape is turned into a solid.
type ExtrudeOptions struct {
	Depth          float32 // Depth of the straight section along +Z.
	CurveSegments  int     // Straight pieces each curve is flattened into.
	BevelEnabled   bool
	BevelThickness float32 // How far the bevel reaches past the front and back faces along Z.
	BevelSize      float32 // How far the bevel reaches outwards from the outline.
	BevelOffset    float32 // Distance from the outline where the bevel starts.
	BevelSegments  int
}

// NewExtrudeOptions returns the default options: a depth of 1, 12 curve segments, and a 3-step bevel.
func NewExtrudeOptions() ExtrudeOptions {
	return ExtrudeOptions{
		Depth:          1,
		CurveSegments:  12,
		BevelEnabled:   true,
		BevelThickness: 0.2,
		BevelSize:      0.1,
		BevelOffset:    0,
		BevelSegments:  3,
	}
}

// layer is one ring of the extrusion: every contour point pushed out by offset and placed at z.
type layer struct {
	z, offset float32
}

func (opt ExtrudeOptions) layers() []layer {

	if !opt.BevelEnabled || opt.BevelSegments <= 0 {
		return []layer{{0, 0}, {opt.Depth, 0}}
	}

	full := opt.BevelSize + opt.BevelOffset
	layers := make([]layer, 0, opt.BevelSegments*2+2)

	// Back bevel, from the outermost ring at the back inwards to z = 0.
	for b := 0; b < opt.BevelSegments; b++ {
		t := float32(b) / float32(opt.BevelSegments)
		layers = append(layers, layer{
			z:      -opt.BevelThickness * math32.Cos(t*math32.Pi/2),
			offset: opt.BevelSize*math32.Sin(t*math32.Pi/2) + opt.BevelOffset,
		})
	}

	layers = append(layers, layer{0, full}, layer{opt.Depth, full})

	// Front bevel mirrors the back one.
	for b := opt.BevelSegments - 1; b >= 0; b-- {
		t := float32(b) / float32(opt.BevelSegments)
		layers = append(layers, layer{
			z:      opt.Depth + opt.BevelThickness*math32.Cos(t*math32.Pi/2),
			offset: opt.BevelSize*math32.Sin(t*math32.Pi/2) + opt.BevelOffset,
		})
	}

	return layers

}

// Extrude builds a flat-shaded solid from the Shapes given, adding its triangles to the Mesh. The front cap faces
// +Z, the back cap faces -Z, and the side walls face away from the filled area. Vertices aren't shared between
// triangles, so every face keeps a hard edge. Shapes that can't be triangulated completely still contribute
// their side walls and whatever part of the caps could be resolved; the first such error is returned.
func Extrude(mesh *engine.Mesh, shapes []Shape, opt ExtrudeOptions) error {

	layers := opt.layers()
	var firstErr error

	for _, shape := range shapes {

		points := shape.Points()
		if len(points) < 3 {
			continue
		}

		moves := bevelVectors(shape)

		tris, err := Triangulate(shape)
		if err != nil && firstErr == nil {
			firstErr = err
		}

		at := func(i int, l layer) engine.Vector3 {
			p := points[i].Add(moves[i].Scale(l.offset))
			return engine.NewVector3(p.X, p.Y, l.z)
		}

		back, front := layers[0], layers[len(layers)-1]

		for _, t := range tris {
			addFlatTriangle(mesh, at(t[2], back), at(t[1], back), at(t[0], back))
			addFlatTriangle(mesh, at(t[0], front), at(t[1], front), at(t[2], front))
		}

		start := 0
		rings := append([][]Point{shape.Outer}, shape.Holes...)

		for _, ring := range rings {

			for k := range ring {

				j := (k + 1) % len(ring)

				for s := 0; s+1 < len(layers); s++ {
					lo, hi := layers[s], layers[s+1]
					a := at(start+k, lo)
					b := at(start+j, lo)
					c := at(start+j, hi)
					d := at(start+k, hi)
					addFlatTriangle(mesh, a, b, c)
					addFlatTriangle(mesh, a, c, d)
				}

			}

			start += len(ring)

		}

	}

	mesh.UpdateBounds()

	return firstErr

}

// addFlatTriangle appends a triangle with its own three vertices, all carrying the face normal. Zero-area
// triangles are skipped.
func addFlatTriangle(mesh *engine.Mesh, a, b, c engine.Vector3) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.MagnitudeSquared() < 1e-14 {
		return
	}
	n = n.Unit()
	ia := mesh.AddVertex(a, n)
	ib := mesh.AddVertex(b, n)
	ic := mesh.AddVertex(c, n)
	mesh.AddTriangle(ia, ib, ic)
}

// bevelVectors returns, for each point of Shape.Points, the direction it moves in as the outline grows. The
// solid always lies to the left of a contour's travel direction, so the outward normal of an edge (dx, dy) is
// (dy, -dx) for the outer contour and holes alike. At corners the two edge normals are mitred, with the
// length capped at √2 so that sharp spikes don't shoot off.
func bevelVectors(shape Shape) []Point {

	moves := make([]Point, 0, len(shape.Outer))

	rings := append([][]Point{shape.Outer}, shape.Holes...)

	for _, ring := range rings {

		n := len(ring)

		for i := range ring {

			prev, cur, next := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]

			n1 := edgeNormal(prev, cur)
			n2 := edgeNormal(cur, next)

			denom := 1 + n1.Dot(n2)

			var v Point
			if denom < 1e-6 {
				// The contour doubles back on itself; push straight out along the incoming edge normal.
				v = n1
			} else {
				v = n1.Add(n2).Scale(1 / denom)
			}

			if l := v.Length(); l > math32.Sqrt2 {
				v = v.Scale(math32.Sqrt2 / l)
			}

			moves = append(moves, v)

		}

	}

	return moves

}

func edgeNormal(from, to Point) Point {
	d := to.Sub(from)
	l := d.Length()
	if l == 0 {
		return Point{}
	}
	return Point{d.Y / l, -d.X / l}
}
