package geometry

import (
	"github.com/chewxy/math32"
	"github.com/solarlune/donutfield/internal/engine"
)

// TorusVertexCount returns the number of vertices NewTorus generates for the given segment counts.
func TorusVertexCount(radialSegments, tubularSegments int) int {
	return (radialSegments + 1) * (tubularSegments + 1)
}

// NewTorus creates a torus Mesh lying in the XY plane, centered on the origin. radius is the distance from the
// center of the torus to the center of the tube, and tube is the radius of the tube itself. radialSegments
// subdivides the tube's cross-section and tubularSegments subdivides the ring. Segment counts below 3 are raised to 3.
func NewTorus(radius, tube float32, radialSegments, tubularSegments int) *engine.Mesh {

	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)

	mesh := engine.NewMesh("Torus")

	for j := 0; j <= radialSegments; j++ {

		v := float32(j) / float32(radialSegments) * math32.Pi * 2
		cv, sv := math32.Cos(v), math32.Sin(v)

		for i := 0; i <= tubularSegments; i++ {

			u := float32(i) / float32(tubularSegments) * math32.Pi * 2
			cu, su := math32.Cos(u), math32.Sin(u)

			pos := engine.NewVector3(
				(radius+tube*cv)*cu,
				(radius+tube*cv)*su,
				tube*sv,
			)

			center := engine.NewVector3(radius*cu, radius*su, 0)

			mesh.AddVertex(pos, pos.Sub(center).Unit())

		}

	}

	row := uint32(tubularSegments + 1)

	for j := 1; j <= radialSegments; j++ {
		for i := 1; i <= tubularSegments; i++ {
			a := row*uint32(j) + uint32(i) - 1
			b := row*uint32(j-1) + uint32(i) - 1
			c := row*uint32(j-1) + uint32(i)
			d := row*uint32(j) + uint32(i)
			mesh.AddTriangle(a, b, d)
			mesh.AddTriangle(b, c, d)
		}
	}

	mesh.UpdateBounds()

	return mesh

}
