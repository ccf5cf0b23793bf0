package app

import (
	"github.com/solarlune/donutfield/internal/events"
)

func (v *View) onPointerMove(e events.Event) {
	if !v.alive {
		return
	}
	v.pointer[0] = e.X/float32(v.width)*2 - 1
	v.pointer[1] = -(e.Y/float32(v.height)*2 - 1)
}

func (v *View) onResize(e events.Event) {

	if !v.alive || e.Width <= 0 || e.Height <= 0 {
		return
	}

	v.width, v.height = e.Width, e.Height

	v.camera.SetAspectRatio(float32(v.width) / float32(v.height))
	v.camera.UpdateProjectionMatrix()

	v.renderer.SetSize(v.width, v.height)
	v.applyPixelRatio(e.DeviceScaleFactor)

	v.logger.Debug("resized", "width", v.width, "height", v.height, "pixel_ratio", v.pixelRatio)

}

// MaxPixelRatio is the highest pixel ratio the view renders at, whatever the settings or the display say.
const MaxPixelRatio = 2

// applyPixelRatio clamps the device's pixel ratio to the configured limit, which itself can't go past
// MaxPixelRatio.
func (v *View) applyPixelRatio(deviceScaleFactor float64) {

	if deviceScaleFactor <= 0 {
		deviceScaleFactor = 1
	}

	limit := v.opt.Config.Window.MaxPixelRatio
	if limit <= 0 {
		limit = MaxPixelRatio
	}

	v.pixelRatio = min(deviceScaleFactor, limit, MaxPixelRatio)
	v.renderer.SetPixelRatio(v.pixelRatio)

}

func (v *View) onDoubleClick(events.Event) {
	if !v.alive {
		return
	}
	v.opt.Display.SetFullscreen(!v.opt.Display.IsFullscreen())
}
