// Package app puts the donutfield scene together: it loads the matcap and the font, builds the text and the
// torus field once both have arrived, and wires the camera controls and viewport handlers to an events.Bus.
package app

import (
	"errors"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/solarlune/donutfield/internal/assets"
	"github.com/solarlune/donutfield/internal/config"
	"github.com/solarlune/donutfield/internal/engine"
	"github.com/solarlune/donutfield/internal/events"
	"github.com/solarlune/donutfield/internal/orbit"
	"github.com/solarlune/donutfield/internal/typeface"
)

// ErrMounted is returned when mounting a View that is already mounted.
var ErrMounted = errors.New("app: view already mounted")

// Display is the part of the platform that presents the view.
type Display interface {
	IsFullscreen() bool
	SetFullscreen(fullscreen bool)
	DeviceScaleFactor() float64
}

// Renderer draws the scene. render.Renderer is the real implementation.
type Renderer interface {
	SetSize(w, h int)
	SetPixelRatio(ratio float64)
	PixelRatio() float64
	Render(scene *engine.Scene, camera *engine.Camera)
	Dispose()
}

// textureForgetter is implemented by renderers that keep GPU copies of textures.
type textureForgetter interface {
	ForgetTexture(img image.Image)
}

// Status describes how far loading has got.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

const (
	fieldOfView = 75
	nearPlane   = 0.1
	farPlane    = 100
	cameraZ     = 3
)

// Options are the View's collaborators and settings.
type Options struct {
	Config  config.Config
	Assets  fs.FS // Where the texture and font are read from.
	Display Display
	Bus     *events.Bus
	Logger  *slog.Logger

	NewRenderer func(w, h int) (Renderer, error)

	// Rand places the tori. If nil, a generator seeded from Config.Scene.Seed is used, or from the clock if that's
	// 0 too.
	Rand *rand.Rand

	// Initial viewport size in logical pixels.
	Width, Height int

	// WatchRoot is the directory on disk that Assets reads from. When it is set and Config.Assets.Watch is on, the
	// matcap is reloaded whenever its file changes.
	WatchRoot string
}

// View owns the scene, camera, renderer and controls between Mount and Unmount.
type View struct {
	opt    Options
	logger *slog.Logger

	alive bool

	scene    *engine.Scene
	camera   *engine.Camera
	renderer Renderer
	controls *orbit.Controls
	loader   *assets.Loader

	listeners []events.Listener

	watcher *assets.Watcher
	reloads chan string

	width, height int
	pixelRatio    float64
	pointer       [2]float32

	texture  *assets.Texture
	font     typeface.Font
	material *engine.Material

	status     Status
	loadErrors []error
}

// NewView creates an unmounted View.
func NewView(opt Options) *View {

	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if opt.Bus == nil {
		opt.Bus = events.NewBus()
	}

	return &View{
		opt:        opt,
		logger:     logger,
		width:      max(opt.Width, 1),
		height:     max(opt.Height, 1),
		pixelRatio: 1,
	}

}

// Mount sets up the scene, camera, renderer and controls, registers the viewport handlers and starts loading the
// matcap and font in the background.
func (v *View) Mount() error {

	if v.alive {
		return ErrMounted
	}

	cfg := v.opt.Config

	renderer, err := v.opt.NewRenderer(v.width, v.height)
	if err != nil {
		return err
	}

	v.renderer = renderer
	v.status = StatusLoading
	v.loadErrors = nil
	v.texture, v.font, v.material = nil, nil, nil

	v.scene = engine.NewScene("donutfield")
	if clear, err := cfg.ClearColor(); err == nil {
		v.scene.ClearColor = clear
	}

	v.camera = engine.NewCamera(fieldOfView, float32(v.width)/float32(v.height), nearPlane, farPlane)
	v.camera.Position = engine.NewVector3(0, 0, cameraZ)
	v.camera.LookAt(engine.NewVector3(0, 0, 0))

	v.applyPixelRatio(v.opt.Display.DeviceScaleFactor())

	v.controls = orbit.NewControls(v.camera, v.opt.Bus, v.height)
	v.controls.EnableDamping = true
	v.controls.DampingFactor = 0.05

	v.listeners = []events.Listener{
		v.opt.Bus.On(events.PointerMove, v.onPointerMove),
		v.opt.Bus.On(events.Resize, v.onResize),
		v.opt.Bus.On(events.DoubleClick, v.onDoubleClick),
	}

	v.loader = assets.NewLoader(v.opt.Assets, v.logger)
	v.loader.MaxTextureSize = cfg.Assets.MaxTextureSize

	v.alive = true

	if err := v.loader.LoadTexture(cfg.Assets.Texture, assets.Callbacks[*assets.Texture]{
		OnLoad:     v.onTexture,
		OnProgress: v.onProgress,
		OnError:    v.onLoadError,
	}); err != nil {
		v.onLoadError(err)
	}

	if err := v.loader.LoadFont(cfg.Assets.Font, assets.Callbacks[typeface.Font]{
		OnLoad:     v.onFont,
		OnProgress: v.onProgress,
		OnError:    v.onLoadError,
	}); err != nil {
		v.onLoadError(err)
	}

	if cfg.Assets.Watch && v.opt.WatchRoot != "" {
		v.startWatching()
	}

	v.logger.Info("mounted", "width", v.width, "height", v.height, "pixel_ratio", v.pixelRatio)

	return nil

}

// Unmount tears the View down. The View stops responding to events and load results right away; it can be
// mounted again afterwards.
func (v *View) Unmount() {

	if !v.alive {
		return
	}

	v.alive = false

	for _, l := range v.listeners {
		v.opt.Bus.Off(l)
	}
	v.listeners = nil

	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			v.logger.Warn("closing asset watcher", "err", err)
		}
		v.watcher = nil
	}

	v.loader.Close()
	v.controls.Dispose()
	v.renderer.Dispose()
	v.scene.Dispose()

	v.texture, v.font, v.material = nil, nil, nil

	v.logger.Info("unmounted")

}

// Alive returns true between Mount and Unmount.
func (v *View) Alive() bool {
	return v.alive
}

// Update runs the callbacks of finished loads and picks up changed asset files. Call it once per tick on the
// goroutine that calls Frame.
func (v *View) Update() {

	if !v.alive {
		return
	}

	v.loader.Dispatch()

	for {
		select {
		case name := <-v.reloads:
			v.reloadTexture(name)
		default:
			return
		}
	}

}

// Frame advances the camera controls and renders the scene. It does nothing once the View is unmounted.
func (v *View) Frame() {
	if !v.alive {
		return
	}
	v.controls.Update()
	v.renderer.Render(v.scene, v.camera)
}

// Pointer returns the last pointer position in normalized device coordinates: -1 to 1 from left to right and from
// bottom to top.
func (v *View) Pointer() (x, y float32) {
	return v.pointer[0], v.pointer[1]
}

// Viewport returns the viewport size in logical pixels and the pixel ratio in use.
func (v *View) Viewport() (w, h int, pixelRatio float64) {
	return v.width, v.height, v.pixelRatio
}

// Status returns how far loading has got.
func (v *View) Status() Status {
	return v.status
}

// LoadErrors returns the errors reported by the loaders since Mount.
func (v *View) LoadErrors() []error {
	return v.loadErrors
}

func (v *View) Scene() *engine.Scene {
	return v.scene
}

func (v *View) Camera() *engine.Camera {
	return v.camera
}

func (v *View) Renderer() Renderer {
	return v.renderer
}

func (v *View) Controls() *orbit.Controls {
	return v.controls
}

func (v *View) onTexture(tex *assets.Texture) {

	if !v.alive {
		return
	}

	tex.ColorSpace = engine.ColorSpaceSRGB
	v.texture = tex

	b := tex.Image.Bounds()
	v.logger.Info("texture loaded", "path", tex.Path, "format", tex.Format, "width", b.Dx(), "height", b.Dy())

	v.build()

}

func (v *View) onFont(font typeface.Font) {

	if !v.alive {
		return
	}

	v.font = font
	v.logger.Info("font loaded", "name", font.Name())

	v.build()

}

func (v *View) onProgress(p assets.Progress) {
	v.logger.Debug("loading", "path", p.Path, "loaded", p.Loaded, "total", p.Total)
}

func (v *View) onLoadError(err error) {

	if !v.alive {
		return
	}

	v.loadErrors = append(v.loadErrors, err)
	v.status = StatusFailed
	v.logger.Error("load failed", "err", err)

}

// build adds the text and tori to the scene once both the matcap and the font are in. It only ever builds once per
// mount, and not at all if either load failed.
func (v *View) build() {

	if v.status != StatusLoading || v.texture == nil || v.font == nil {
		return
	}

	v.material = engine.NewMaterial("matcap", v.texture.Image)
	v.material.ColorSpace = v.texture.ColorSpace

	cfg := v.opt.Config

	start := time.Now()

	err := BuildScene(v.scene, v.font, v.material, SceneOptions{
		Text:       cfg.Scene.Text,
		TorusCount: cfg.Scene.TorusCount,
	}, v.random())

	if err != nil {
		v.logger.Warn("building scene", "err", err)
	}

	// The font is only needed for the text.
	v.font = nil
	v.status = StatusReady

	v.logger.Info("scene built", "models", v.scene.Len(), "took", time.Since(start))

}

func (v *View) random() *rand.Rand {
	if v.opt.Rand != nil {
		return v.opt.Rand
	}
	seed := v.opt.Config.Scene.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>32|1))
}

func (v *View) startWatching() {

	v.reloads = make(chan string, 1)

	watcher, err := assets.Watch(v.opt.WatchRoot, []string{v.opt.Config.Assets.Texture}, v.logger, func(name string) {
		select {
		case v.reloads <- name:
		default:
		}
	})

	if err != nil {
		v.logger.Warn("not watching assets", "err", err)
		return
	}

	v.watcher = watcher

}

func (v *View) reloadTexture(name string) {

	err := v.loader.LoadTexture(name, assets.Callbacks[*assets.Texture]{
		OnLoad: func(tex *assets.Texture) {
			if !v.alive || v.material == nil {
				return
			}
			old := v.material.Matcap
			tex.ColorSpace = engine.ColorSpaceSRGB
			v.material.Matcap = tex.Image
			v.material.ColorSpace = tex.ColorSpace
			if f, ok := v.renderer.(textureForgetter); ok && old != nil {
				f.ForgetTexture(old)
			}
			v.logger.Info("texture reloaded", "path", name)
		},
		// A half-written file fails to decode; the next write event tries again.
		OnError: func(err error) {
			v.logger.Warn("reloading texture", "err", err)
		},
	})

	if err != nil {
		v.logger.Warn("reloading texture", "err", err)
	}

}
