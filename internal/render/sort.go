package render

// sortingTriangle is the little bit of data needed to order a triangle for drawing.
type sortingTriangle struct {
	id    int
	depth float32
}

// triangleBucket orders triangles roughly back to front by dropping them into a fixed number of depth bins. It's not
// an exact sort, but it's linear in the triangle count and good enough within a single model.
type triangleBucket struct {
	bins     [][]sortingTriangle
	unset    []sortingTriangle
	min, max float32
}

func newTriangleBucket(binCount int) *triangleBucket {
	return &triangleBucket{bins: make([][]sortingTriangle, max(1, binCount))}
}

func (s *triangleBucket) Add(id int, depth float32) {
	if len(s.unset) == 0 || depth < s.min {
		s.min = depth
	}
	if len(s.unset) == 0 || depth > s.max {
		s.max = depth
	}
	s.unset = append(s.unset, sortingTriangle{id: id, depth: depth})
}

// Sort distributes the added triangles into bins.
func (s *triangleBucket) Sort() {

	binCount := len(s.bins)
	rangeDiff := s.max - s.min

	if rangeDiff == 0 {
		rangeDiff = 0.001
	}

	for _, tri := range s.unset {
		target := int((tri.depth - s.min) / rangeDiff * float32(binCount))
		target = min(max(target, 0), binCount-1)
		s.bins[target] = append(s.bins[target], tri)
	}

}

// ForEach calls forEach for each sorted triangle, farthest first.
func (s *triangleBucket) ForEach(forEach func(id int)) {
	for i := len(s.bins) - 1; i >= 0; i-- {
		for _, tri := range s.bins[i] {
			forEach(tri.id)
		}
	}
}

func (s *triangleBucket) Clear() {
	for i := range s.bins {
		s.bins[i] = s.bins[i][:0]
	}
	s.unset = s.unset[:0]
}

func (s *triangleBucket) Len() int {
	return len(s.unset)
}
