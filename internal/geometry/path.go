package geometry

import "github.com/chewxy/math32"

// Point is a position on a 2D outline.
type Point struct {
	X, Y float32
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return Point{p.X - other.X, p.Y - other.Y}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// Scale returns p multiplied by s.
func (p Point) Scale(s float32) Point {
	return Point{p.X * s, p.Y * s}
}

// Cross returns the Z component of the 3D cross product of p and other.
func (p Point) Cross(other Point) float32 {
	return p.X*other.Y - p.Y*other.X
}

// Dot returns the dot product of p and other.
func (p Point) Dot(other Point) float32 {
	return p.X*other.X + p.Y*other.Y
}

// Length returns the distance from the origin to p.
func (p Point) Length() float32 {
	return math32.Sqrt(p.X*p.X + p.Y*p.Y)
}

type segmentOp int

const (
	opMoveTo segmentOp = iota
	opLineTo
	opQuadTo
	opCubeTo
	opClose
)

type segment struct {
	op   segmentOp
	args [3]Point
}

// Path is a 2D outline made of one or more contours. Each MoveTo begins a new contour; contours are always
// treated as closed.
type Path struct {
	segments []segment
}

// NewPath returns an empty Path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float32) {
	p.segments = append(p.segments, segment{op: opMoveTo, args: [3]Point{{x, y}}})
}

// LineTo adds a straight line to (x, y).
func (p *Path) LineTo(x, y float32) {
	p.segments = append(p.segments, segment{op: opLineTo, args: [3]Point{{x, y}}})
}

// QuadTo adds a quadratic Bézier curve with the control point (cx, cy) ending at (x, y).
func (p *Path) QuadTo(cx, cy, x, y float32) {
	p.segments = append(p.segments, segment{op: opQuadTo, args: [3]Point{{cx, cy}, {x, y}}})
}

// CubeTo adds a cubic Bézier curve with the control points (c1x, c1y) and (c2x, c2y) ending at (x, y).
func (p *Path) CubeTo(c1x, c1y, c2x, c2y, x, y float32) {
	p.segments = append(p.segments, segment{op: opCubeTo, args: [3]Point{{c1x, c1y}, {c2x, c2y}, {x, y}}})
}

// Close closes the current contour.
func (p *Path) Close() {
	p.segments = append(p.segments, segment{op: opClose})
}

// Empty returns true if the Path has no drawing commands.
func (p *Path) Empty() bool {
	return len(p.segments) == 0
}

// Contours flattens the Path into polygons. Each curve is split into curveSegments straight pieces; lines are kept
// as-is. Repeated points and contours with fewer than three distinct points are dropped.
func (p *Path) Contours(curveSegments int) [][]Point {

	curveSegments = max(curveSegments, 1)

	contours := [][]Point{}
	current := []Point{}
	var pen Point

	finish := func() {
		current = dedupe(current)
		if len(current) >= 3 {
			contours = append(contours, current)
		}
		current = []Point{}
	}

	for _, seg := range p.segments {

		switch seg.op {

		case opMoveTo:
			finish()
			pen = seg.args[0]
			current = append(current, pen)

		case opLineTo:
			if len(current) == 0 {
				current = append(current, pen)
			}
			pen = seg.args[0]
			current = append(current, pen)

		case opQuadTo:
			if len(current) == 0 {
				current = append(current, pen)
			}
			start, ctrl, end := pen, seg.args[0], seg.args[1]
			for i := 1; i <= curveSegments; i++ {
				t := float32(i) / float32(curveSegments)
				mt := 1 - t
				current = append(current, Point{
					X: mt*mt*start.X + 2*mt*t*ctrl.X + t*t*end.X,
					Y: mt*mt*start.Y + 2*mt*t*ctrl.Y + t*t*end.Y,
				})
			}
			pen = end

		case opCubeTo:
			if len(current) == 0 {
				current = append(current, pen)
			}
			start, c1, c2, end := pen, seg.args[0], seg.args[1], seg.args[2]
			for i := 1; i <= curveSegments; i++ {
				t := float32(i) / float32(curveSegments)
				mt := 1 - t
				current = append(current, Point{
					X: mt*mt*mt*start.X + 3*mt*mt*t*c1.X + 3*mt*t*t*c2.X + t*t*t*end.X,
					Y: mt*mt*mt*start.Y + 3*mt*mt*t*c1.Y + 3*mt*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			pen = end

		case opClose:
			if len(current) > 0 {
				pen = current[0]
			}
			finish()

		}

	}

	finish()

	return contours

}

// dedupe removes consecutive duplicate points, including a closing point that repeats the first.
func dedupe(points []Point) []Point {

	const eps = 1e-6

	out := make([]Point, 0, len(points))

	for _, pt := range points {
		if len(out) > 0 {
			last := out[len(out)-1]
			if math32.Abs(last.X-pt.X) < eps && math32.Abs(last.Y-pt.Y) < eps {
				continue
			}
		}
		out = append(out, pt)
	}

	for len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if math32.Abs(last.X-first.X) < eps && math32.Abs(last.Y-first.Y) < eps {
			out = out[:len(out)-1]
			continue
		}
		break
	}

	return out

}

// SignedArea returns the signed area of a closed polygon; it is positive for counter-clockwise winding (Y up).
func SignedArea(contour []Point) float32 {
	area := float32(0)
	for i := range contour {
		j := (i + 1) % len(contour)
		area += contour[i].Cross(contour[j])
	}
	return area / 2
}

// pointInPolygon reports whether pt lies inside the polygon using the even-odd rule.
func pointInPolygon(pt Point, polygon []Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
