// Package platform runs the donutfield view on ebitengine: it owns the window, polls input into events, and draws
// the rendered frame and a small debug overlay to the screen.
package platform

import "github.com/hajimehoshi/ebiten/v2"

// Display controls the ebitengine window.
type Display struct{}

func (Display) IsFullscreen() bool {
	return ebiten.IsFullscreen()
}

// SetFullscreen switches the window in or out of fullscreen. On desktop platforms this can't fail.
func (Display) SetFullscreen(fullscreen bool) {
	ebiten.SetFullscreen(fullscreen)
}

// DeviceScaleFactor returns the pixel ratio of the monitor the window is on.
func (Display) DeviceScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}
