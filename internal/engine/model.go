package engine

// Model represents a renderable instance of a Mesh placed in the world, shaded with a Material.
// Models do not own their Mesh or Material; many Models may reference the same ones.
type Model struct {
	Name     string
	Mesh     *Mesh
	Material *Material

	Position Vector3
	Rotation Vector3 // Euler angles in radians, applied in XYZ order.
	Scale    Vector3

	Visible bool
}

// NewModel creates a new, visible Model with a unit scale.
func NewModel(name string, mesh *Mesh, material *Material) *Model {
	return &Model{
		Name:     name,
		Mesh:     mesh,
		Material: material,
		Scale:    NewVector3(1, 1, 1),
		Visible:  true,
	}
}

// SetUniformScale sets the Model's scale to the same value on all three axes.
func (model *Model) SetUniformScale(scale float32) {
	model.Scale = NewVector3(scale, scale, scale)
}

// Transform returns the Model's world transform: scale, then rotation, then translation.
func (model *Model) Transform() Matrix4 {
	return NewMatrix4Translate(model.Position.X, model.Position.Y, model.Position.Z).
		Mult(NewMatrix4RotateFromEuler(model.Rotation)).
		Mult(NewMatrix4Scale(model.Scale.X, model.Scale.Y, model.Scale.Z))
}
