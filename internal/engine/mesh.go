package engine

// Dimensions represents the minimum and maximum spatial dimensions of a Mesh.
type Dimensions struct {
	Min, Max Vector3
}

// Center returns the center point inbetween the two corners of the dimension set.
func (dim Dimensions) Center() Vector3 {
	return dim.Min.Add(dim.Max).Scale(0.5)
}

// Width returns the size of the Dimensions on the X axis.
func (dim Dimensions) Width() float32 {
	return dim.Max.X - dim.Min.X
}

// Height returns the size of the Dimensions on the Y axis.
func (dim Dimensions) Height() float32 {
	return dim.Max.Y - dim.Min.Y
}

// Depth returns the size of the Dimensions on the Z axis.
func (dim Dimensions) Depth() float32 {
	return dim.Max.Z - dim.Min.Z
}

// Mesh represents a collection of indexed triangles. A Mesh holds no transform of its own, so a single Mesh can
// be shared by any number of Models; once built, it is treated as read-only.
type Mesh struct {
	Name            string
	VertexPositions []Vector3
	VertexNormals   []Vector3
	Indices         []uint32 // Triangle list; every three indices form a counter-clockwise front-facing triangle.
	Dimensions      Dimensions
}

// NewMesh creates a new, empty Mesh with the given name.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex and returns its index.
func (mesh *Mesh) AddVertex(position, normal Vector3) uint32 {
	mesh.VertexPositions = append(mesh.VertexPositions, position)
	mesh.VertexNormals = append(mesh.VertexNormals, normal)
	return uint32(len(mesh.VertexPositions) - 1)
}

// AddTriangle appends a triangle made of three existing vertex indices.
func (mesh *Mesh) AddTriangle(a, b, c uint32) {
	mesh.Indices = append(mesh.Indices, a, b, c)
}

// VertexCount returns the number of vertices in the Mesh.
func (mesh *Mesh) VertexCount() int {
	return len(mesh.VertexPositions)
}

// TriangleCount returns the number of triangles in the Mesh.
func (mesh *Mesh) TriangleCount() int {
	return len(mesh.Indices) / 3
}

// UpdateBounds recalculates the Mesh's Dimensions from its vertex positions.
func (mesh *Mesh) UpdateBounds() {

	if len(mesh.VertexPositions) == 0 {
		mesh.Dimensions = Dimensions{}
		return
	}

	dim := Dimensions{Min: mesh.VertexPositions[0], Max: mesh.VertexPositions[0]}

	for _, v := range mesh.VertexPositions[1:] {
		dim.Min = dim.Min.Min(v)
		dim.Max = dim.Max.Max(v)
	}

	mesh.Dimensions = dim

}

// Translate moves every vertex of the Mesh by the offset given and updates its bounds.
func (mesh *Mesh) Translate(offset Vector3) {
	for i := range mesh.VertexPositions {
		mesh.VertexPositions[i] = mesh.VertexPositions[i].Add(offset)
	}
	mesh.UpdateBounds()
}

// Center moves the Mesh's vertices so that the center of its bounding box lies on the origin.
// It returns the offset applied.
func (mesh *Mesh) Center() Vector3 {
	mesh.UpdateBounds()
	offset := mesh.Dimensions.Center().Invert()
	mesh.Translate(offset)
	return offset
}
