package engine

import "errors"

// ErrSceneDisposed is returned when adding to a Scene that has already been torn down.
var ErrSceneDisposed = errors.New("engine: scene has been disposed")

// Scene is a flat container of Models to be rendered from a Camera.
type Scene struct {
	Name       string
	ClearColor Color

	models   []*Model
	disposed bool
}

// NewScene creates a new, empty Scene.
func NewScene(name string) *Scene {
	return &Scene{
		Name:       name,
		ClearColor: NewColor(0, 0, 0, 1),
	}
}

// Add adds the given Models to the Scene. Adding to a disposed Scene adds nothing and returns ErrSceneDisposed.
func (scene *Scene) Add(models ...*Model) error {
	if scene.disposed {
		return ErrSceneDisposed
	}
	for _, m := range models {
		if m != nil {
			scene.models = append(scene.models, m)
		}
	}
	return nil
}

// Models returns the Models in the Scene, in the order they were added. The slice must not be modified.
func (scene *Scene) Models() []*Model {
	return scene.models
}

// Len returns the number of Models in the Scene.
func (scene *Scene) Len() int {
	return len(scene.models)
}

// Dispose empties the Scene and prevents further additions.
func (scene *Scene) Dispose() {
	scene.models = nil
	scene.disposed = true
}

// Disposed returns whether Dispose has been called.
func (scene *Scene) Disposed() bool {
	return scene.disposed
}
