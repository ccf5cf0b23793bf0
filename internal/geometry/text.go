package geometry

import (
	"fmt"

	"github.com/solarlune/donutfield/internal/engine"
)

// Font is a source of glyph outlines.
type Font interface {
	// Paths lays text out on a baseline starting at the origin (Y up) and returns one Path per visible glyph,
	// scaled so that size is the height of an em.
	Paths(text string, size float32) ([]*Path, error)
}

// TextOptions controls NewText.
type TextOptions struct {
	Size float32 // Em height in world units.
	ExtrudeOptions
}

// NewTextOptions returns TextOptions with a size of 100 and the default extrusion options, with the depth reduced
// to 50.
func NewTextOptions() TextOptions {
	opt := TextOptions{Size: 100, ExtrudeOptions: NewExtrudeOptions()}
	opt.Depth = 50
	return opt
}

// NewText builds an extruded, flat-shaded Mesh spelling out text in the Font given. The mesh isn't centered;
// its origin stays at the start of the baseline. When some glyph outline can't be triangulated cleanly, the
// mesh is still returned alongside an error wrapping ErrDegenerate.
func NewText(font Font, text string, opt TextOptions) (*engine.Mesh, error) {

	paths, err := font.Paths(text, opt.Size)
	if err != nil {
		return nil, fmt.Errorf("laying out %q: %w", text, err)
	}

	mesh := engine.NewMesh("Text")

	var triErr error

	for i, path := range paths {
		shapes := ShapesFromContours(path.Contours(opt.CurveSegments))
		if err := Extrude(mesh, shapes, opt.ExtrudeOptions); err != nil && triErr == nil {
			triErr = fmt.Errorf("glyph %d of %q: %w", i, text, err)
		}
	}

	mesh.UpdateBounds()

	return mesh, triErr

}
