package engine

import "image"

// Material describes how the surface of a Model is shaded. Materials shade using a matcap ("material capture"): a
// picture of a lit sphere that is sampled using the surface normal as seen from the camera, so no lights are needed.
// A single Material can be shared by any number of Models; changing it changes all of them.
type Material struct {
	Name string

	// Matcap is the lit-sphere texture. If nil, the renderer falls back to a flat white texture.
	Matcap image.Image

	// ColorSpace indicates how the values of Matcap are encoded. Defaults to ColorSpaceLinear, which means the
	// texture gets encoded to sRGB on output; set it to ColorSpaceSRGB for ordinary image files.
	ColorSpace ColorSpace

	// Color tints the sampled matcap color. Defaults to opaque white.
	Color Color

	// BackfaceCulling skips triangles facing away from the camera. Defaults to true.
	BackfaceCulling bool
}

// NewMaterial creates a new Material with the name and matcap texture given.
func NewMaterial(name string, matcap image.Image) *Material {
	return &Material{
		Name:            name,
		Matcap:          matcap,
		Color:           NewColor(1, 1, 1, 1),
		BackfaceCulling: true,
	}
}
