package app

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/solarlune/donutfield/internal/engine"
	"github.com/solarlune/donutfield/internal/geometry"
)

const (
	DefaultTorusCount = 160

	// Tori are spread over a cube this wide, centered on the origin.
	placementRange = 10

	torusRadius          = 0.3
	torusTube            = 0.2
	torusRadialSegments  = 20
	torusTubularSegments = 45
)

// TextOptions returns the extrusion settings used for the title text.
func TextOptions() geometry.TextOptions {
	return geometry.TextOptions{
		Size: 0.5,
		ExtrudeOptions: geometry.ExtrudeOptions{
			Depth:          0.2,
			CurveSegments:  5,
			BevelEnabled:   true,
			BevelThickness: 0.03,
			BevelSize:      0.02,
			BevelOffset:    0,
			BevelSegments:  4,
		},
	}
}

// SceneOptions controls BuildScene.
type SceneOptions struct {
	Text       string
	TorusCount int
}

// BuildScene fills scene with the centered title text and a field of randomly placed tori, all shaded with
// material. The tori share a single Mesh. Everything is added to the scene in one go.
//
// A text that can't be laid out is left out, and a glyph that can't be triangulated cleanly leaves a hole in the
// text; both are reported through the returned error, but the rest of the scene is still built.
func BuildScene(scene *engine.Scene, font geometry.Font, material *engine.Material, opt SceneOptions, rng *rand.Rand) error {

	models := make([]*engine.Model, 0, opt.TorusCount+1)

	var textErr error

	if opt.Text != "" {
		mesh, err := geometry.NewText(font, opt.Text, TextOptions())
		if err != nil {
			textErr = fmt.Errorf("building text: %w", err)
		}
		if mesh != nil {
			mesh.Center()
			models = append(models, engine.NewModel("Text", mesh, material))
		}
	}

	torus := NewTorusMesh()

	for i := 0; i < opt.TorusCount; i++ {
		model := engine.NewModel(fmt.Sprintf("Torus.%03d", i), torus, material)
		RandomPlacement(model, rng)
		models = append(models, model)
	}

	if err := scene.Add(models...); err != nil {
		return err
	}

	return textErr

}

// NewTorusMesh returns the torus every donut in the field is drawn with.
func NewTorusMesh() *engine.Mesh {
	return geometry.NewTorus(torusRadius, torusTube, torusRadialSegments, torusTubularSegments)
}

// RandomPlacement moves the Model to a random spot in the placement cube, turns it randomly around its X and Y
// axes, and gives it a random uniform scale below 1. The Z rotation is left alone.
func RandomPlacement(model *engine.Model, rng *rand.Rand) {

	model.Position = engine.NewVector3(
		(rng.Float32()-0.5)*placementRange,
		(rng.Float32()-0.5)*placementRange,
		(rng.Float32()-0.5)*placementRange,
	)

	model.Rotation.X = rng.Float32() * math32.Pi * 2
	model.Rotation.Y = rng.Float32() * math32.Pi * 2

	model.SetUniformScale(rng.Float32())

}
