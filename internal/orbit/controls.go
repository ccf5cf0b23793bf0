// Package orbit implements orbit camera controls: dragging rotates the camera around a target point and the
// mouse wheel dollies it in and out, optionally with inertial damping.
package orbit

import (
	"github.com/chewxy/math32"
	"github.com/solarlune/donutfield/internal/engine"
	"github.com/solarlune/donutfield/internal/events"
)

const epsilon = 1e-6

// Controls orbits a Camera around Target in response to pointer events delivered through an events.Bus.
// Input only accumulates motion; it is applied to the Camera when Update is called, once per frame.
type Controls struct {
	Camera *engine.Camera
	Target engine.Vector3

	EnableRotate bool
	EnableZoom   bool

	// When damping is enabled, motion carries on after the pointer stops and decays by DampingFactor each
	// update.
	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32

	MinDistance, MaxDistance     float32
	MinPolarAngle, MaxPolarAngle float32 // Radians from the +Y axis.

	bus       *events.Bus
	listeners []events.Listener

	viewportHeight float32

	deltaTheta, deltaPhi float32
	scale                float32

	dragging     bool
	lastX, lastY float32

	disposed bool
}

// NewControls creates Controls for camera, listening for pointer, wheel and resize events on bus. viewportHeight
// is the height of the input surface in logical pixels; a full-height drag turns the camera all the way round.
func NewControls(camera *engine.Camera, bus *events.Bus, viewportHeight int) *Controls {

	controls := &Controls{
		Camera:         camera,
		EnableRotate:   true,
		EnableZoom:     true,
		DampingFactor:  0.05,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		MinDistance:    0,
		MaxDistance:    math32.Inf(1),
		MinPolarAngle:  0,
		MaxPolarAngle:  math32.Pi,
		bus:            bus,
		viewportHeight: float32(viewportHeight),
		scale:          1,
	}

	if camera != nil {
		controls.Target = camera.Target
	}

	controls.listeners = []events.Listener{
		bus.On(events.PointerDown, controls.onPointerDown),
		bus.On(events.PointerMove, controls.onPointerMove),
		bus.On(events.PointerUp, controls.onPointerUp),
		bus.On(events.Wheel, controls.onWheel),
		bus.On(events.Resize, controls.onResize),
	}

	return controls

}

func (controls *Controls) onPointerDown(e events.Event) {
	if e.Button != events.ButtonLeft || !controls.EnableRotate {
		return
	}
	controls.dragging = true
	controls.lastX, controls.lastY = e.X, e.Y
}

func (controls *Controls) onPointerMove(e events.Event) {
	if !controls.dragging {
		return
	}
	dx, dy := e.X-controls.lastX, e.Y-controls.lastY
	controls.lastX, controls.lastY = e.X, e.Y
	controls.Rotate(dx, dy)
}

func (controls *Controls) onPointerUp(e events.Event) {
	if e.Button == events.ButtonLeft {
		controls.dragging = false
	}
}

func (controls *Controls) onWheel(e events.Event) {
	if !controls.EnableZoom {
		return
	}
	switch {
	case e.DeltaY > 0:
		controls.Dolly(controls.zoomScale())
	case e.DeltaY < 0:
		controls.Dolly(1 / controls.zoomScale())
	}
}

func (controls *Controls) onResize(e events.Event) {
	if e.Height > 0 {
		controls.viewportHeight = float32(e.Height)
	}
}

func (controls *Controls) zoomScale() float32 {
	return math32.Pow(0.95, controls.ZoomSpeed)
}

// Rotate queues a rotation for a pointer drag of dx, dy logical pixels.
func (controls *Controls) Rotate(dx, dy float32) {
	h := controls.viewportHeight
	if h <= 0 {
		h = 1
	}
	controls.deltaTheta -= 2 * math32.Pi * dx / h * controls.RotateSpeed
	controls.deltaPhi -= 2 * math32.Pi * dy / h * controls.RotateSpeed
}

// Dolly scales the distance to the target on the next Update; a factor below 1 moves the camera closer.
func (controls *Controls) Dolly(factor float32) {
	if factor > 0 {
		controls.scale *= factor
	}
}

// Dragging returns true while the left button is held after pressing it over the input surface.
func (controls *Controls) Dragging() bool {
	return controls.dragging
}

// Update applies queued motion to the Camera and returns true if the Camera moved. It should be called once per
// frame, before rendering.
func (controls *Controls) Update() bool {

	if controls.disposed || controls.Camera == nil {
		return false
	}

	camera := controls.Camera
	before := camera.Position

	offset := camera.Position.Sub(controls.Target)
	radius := offset.Magnitude()

	theta := math32.Atan2(offset.X, offset.Z)
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(clamp(offset.Y/radius, -1, 1))
	}

	if controls.EnableDamping {
		theta += controls.deltaTheta * controls.DampingFactor
		phi += controls.deltaPhi * controls.DampingFactor
	} else {
		theta += controls.deltaTheta
		phi += controls.deltaPhi
	}

	phi = clamp(phi, controls.MinPolarAngle, controls.MaxPolarAngle)
	// Exactly on a pole the view direction is parallel to up.
	phi = clamp(phi, epsilon, math32.Pi-epsilon)

	radius = clamp(radius*controls.scale, controls.MinDistance, controls.MaxDistance)

	sinPhi := math32.Sin(phi)
	offset = engine.NewVector3(
		radius*sinPhi*math32.Sin(theta),
		radius*math32.Cos(phi),
		radius*sinPhi*math32.Cos(theta),
	)

	camera.Position = controls.Target.Add(offset)
	camera.LookAt(controls.Target)

	if controls.EnableDamping {
		controls.deltaTheta *= 1 - controls.DampingFactor
		controls.deltaPhi *= 1 - controls.DampingFactor
	} else {
		controls.deltaTheta, controls.deltaPhi = 0, 0
	}

	controls.scale = 1

	return camera.Position.Sub(before).MagnitudeSquared() > epsilon

}

// Dispose stops the Controls from listening to the bus. Update does nothing afterwards.
func (controls *Controls) Dispose() {
	if controls.disposed {
		return
	}
	for _, l := range controls.listeners {
		controls.bus.Off(l)
	}
	controls.listeners = nil
	controls.dragging = false
	controls.disposed = true
}

// Disposed returns true once Dispose has been called.
func (controls *Controls) Disposed() bool {
	return controls.disposed
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
