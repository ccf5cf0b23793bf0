package platform

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/donutfield/internal/app"
	"github.com/solarlune/donutfield/internal/events"
	"github.com/solarlune/donutfield/internal/render"
)

// Game runs an app.View as an ebiten.Game. It ends the game once the View is unmounted.
type Game struct {
	View    *app.View
	Bus     *events.Bus
	Display app.Display
	Input   *InputPoller
	Overlay *Overlay
	Logger  *slog.Logger

	ScreenshotDir    string
	ScreenshotFormat string

	lastWidth, lastHeight int
	lastScale             float64
	lastUpdate            time.Time
	takeScreenshot        bool
	showDepth             bool
}

// NewGame creates a Game for a mounted View. The View's events must go through bus.
func NewGame(view *app.View, bus *events.Bus, display app.Display, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Game{
		View:             view,
		Bus:              bus,
		Display:          display,
		Input:            NewInputPoller(bus),
		Overlay:          NewOverlay(),
		Logger:           logger,
		ScreenshotDir:    ".",
		ScreenshotFormat: "png",
	}
}

func (g *Game) Update() error {

	if !g.View.Alive() {
		return ebiten.Termination
	}

	now := time.Now()
	dt := float32(0)
	if !g.lastUpdate.IsZero() {
		dt = float32(now.Sub(g.lastUpdate).Seconds())
	}
	g.lastUpdate = now

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.View.Unmount()
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.Overlay.ShowDebug = !g.Overlay.ShowDebug
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		g.Display.SetFullscreen(!g.Display.IsFullscreen())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.showDepth = !g.showDepth
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.takeScreenshot = true
	}

	_, _, ratio := g.View.Viewport()
	g.Input.Poll(now, ratio)

	g.View.Update()

	g.updateStatus()
	g.Overlay.Update(dt)

	return nil

}

func (g *Game) updateStatus() {
	switch g.View.Status() {
	case app.StatusLoading:
		g.Overlay.SetStatus("Loading...")
	case app.StatusReady:
		g.Overlay.Finish(fmt.Sprintf("Ready: %d models", g.View.Scene().Len()))
	case app.StatusFailed:
		if g.Overlay.Status() != "Loading failed; see the log" {
			g.Overlay.SetStatus("Loading failed; see the log")
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {

	if !g.View.Alive() {
		return
	}

	g.View.Frame()

	debug := ""

	if r, ok := g.View.Renderer().(*render.Renderer); ok {

		if g.showDepth {
			screen.DrawImage(r.DepthTexture(), nil)
		} else {
			screen.DrawImage(r.ColorTexture(), nil)
		}

		if g.takeScreenshot {
			g.takeScreenshot = false
			path, err := SaveScreenshot(r.ColorTexture(), g.ScreenshotDir, g.ScreenshotFormat, time.Now())
			if err != nil {
				g.Logger.Error("screenshot", "err", err)
			} else {
				g.Logger.Info("screenshot saved", "path", path)
			}
		}

		if g.Overlay.ShowDebug {
			debug = g.debugText(r.DebugInfo)
		}

	}

	g.Overlay.Draw(screen, debug)

}

func (g *Game) debugText(info render.DebugInfo) string {

	w, h, ratio := g.View.Viewport()
	px, py := g.View.Pointer()
	cam := g.View.Camera().Position

	return fmt.Sprintf(
		"TPS: %.1f\nFPS: %.1f\nRender frame-time: %.2fms\nDraw calls: %d\nModels: %d/%d\nRendered triangles: %d/%d\nViewport: %dx%d @%.2g\nPointer: %+.2f, %+.2f\nCamera: %.2f, %.2f, %.2f\nF1: debug text  F4: fullscreen  F5: depth view  F12: screenshot  Esc: quit",
		ebiten.ActualTPS(),
		ebiten.ActualFPS(),
		float64(info.FrameTime.Microseconds())/1000,
		info.DrawCalls,
		info.DrawnModels, info.TotalModels,
		info.DrawnTris, info.TotalTris,
		w, h, ratio,
		px, py,
		cam.X, cam.Y, cam.Z,
	)

}

// Layout reports viewport changes to the View as resize events and sizes the screen to the renderer's buffer.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {

	scale := g.Display.DeviceScaleFactor()

	if outsideWidth != g.lastWidth || outsideHeight != g.lastHeight || scale != g.lastScale {
		g.lastWidth, g.lastHeight, g.lastScale = outsideWidth, outsideHeight, scale
		g.Bus.Emit(events.Event{
			Kind:              events.Resize,
			Width:             outsideWidth,
			Height:            outsideHeight,
			DeviceScaleFactor: scale,
		})
	}

	w, h, ratio := g.View.Viewport()
	return render.BufferSize(w, h, ratio)

}
