package geometry

import "slices"

// Shape is a filled 2D region: an outer contour wound counter-clockwise and any number of holes wound clockwise.
type Shape struct {
	Outer []Point
	Holes [][]Point
}

// ShapesFromContours groups flattened contours into Shapes. A contour's role is decided by how many other
// contours enclose it: an even count makes it an outer contour, an odd count makes it a hole belonging to the
// smallest outer contour around it. Winding is normalized, so the source font's winding convention doesn't matter.
func ShapesFromContours(contours [][]Point) []Shape {

	type entry struct {
		points []Point
		area   float32
		depth  int
		parent int
	}

	entries := make([]*entry, 0, len(contours))

	for _, c := range contours {
		area := SignedArea(c)
		if area == 0 {
			continue
		}
		abs := area
		if abs < 0 {
			abs = -abs
		}
		entries = append(entries, &entry{points: c, area: abs, parent: -1})
	}

	for i, e := range entries {

		sample := e.points[0]

		for j, other := range entries {
			if i == j || other.area <= e.area {
				continue
			}
			if pointInPolygon(sample, other.points) {
				e.depth++
				// The enclosing contour with the smallest area is the direct parent.
				if e.parent < 0 || other.area < entries[e.parent].area {
					e.parent = j
				}
			}
		}

	}

	shapes := []Shape{}
	shapeOf := map[int]int{}

	for i, e := range entries {
		if e.depth%2 != 0 {
			continue
		}
		shapeOf[i] = len(shapes)
		shapes = append(shapes, Shape{Outer: withWinding(e.points, true)})
	}

	for _, e := range entries {
		if e.depth%2 == 0 || e.parent < 0 {
			continue
		}
		idx, ok := shapeOf[e.parent]
		if !ok {
			continue
		}
		shapes[idx].Holes = append(shapes[idx].Holes, withWinding(e.points, false))
	}

	return shapes

}

// withWinding returns the contour wound counter-clockwise when ccw is true, or clockwise otherwise.
func withWinding(contour []Point, ccw bool) []Point {
	if (SignedArea(contour) > 0) == ccw {
		return contour
	}
	reversed := slices.Clone(contour)
	slices.Reverse(reversed)
	return reversed
}
