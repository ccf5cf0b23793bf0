package app

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math/rand/v2"
	"testing"
	"testing/fstest"
	"time"

	"github.com/chewxy/math32"
	"github.com/solarlune/donutfield/internal/config"
	"github.com/solarlune/donutfield/internal/engine"
	"github.com/solarlune/donutfield/internal/events"
	"github.com/solarlune/donutfield/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

type fakeDisplay struct {
	fullscreen bool
	scale      float64
}

func (d *fakeDisplay) IsFullscreen() bool { return d.fullscreen }
func (d *fakeDisplay) SetFullscreen(f bool) { d.fullscreen = f }
func (d *fakeDisplay) DeviceScaleFactor() float64 { return d.scale }

type fakeRenderer struct {
	w, h      int
	ratio     float64
	renders   int
	lastLen   int
	disposed  bool
	forgotten []image.Image
}

func (r *fakeRenderer) SetSize(w, h int) { r.w, r.h = w, h }
func (r *fakeRenderer) SetPixelRatio(ratio float64) { r.ratio = ratio }
func (r *fakeRenderer) PixelRatio() float64 { return r.ratio }
func (r *fakeRenderer) Dispose() { r.disposed = true }
func (r *fakeRenderer) ForgetTexture(img image.Image) { r.forgotten = append(r.forgotten, img) }

func (r *fakeRenderer) Render(scene *engine.Scene, camera *engine.Camera) {
	if r.disposed {
		panic("render after dispose")
	}
	r.renders++
	r.lastLen = scene.Len()
}

// squareFont draws every character as a unit square.
type squareFont struct{}

func (squareFont) Paths(text string, size float32) ([]*geometry.Path, error) {
	paths := []*geometry.Path{}
	for i := range []rune(text) {
		x := float32(i) * size
		p := geometry.NewPath()
		p.MoveTo(x, 0)
		p.LineTo(x+size*0.8, 0)
		p.LineTo(x+size*0.8, size)
		p.LineTo(x, size)
		p.Close()
		paths = append(paths, p)
	}
	return paths, nil
}

func matcapPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(4, 4, color.NRGBA{255, 255, 255, 255})
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

type harness struct {
	view     *View
	bus      *events.Bus
	display  *fakeDisplay
	renderer *fakeRenderer
}

func newHarness(t *testing.T, fsys fs.FS, mutate func(cfg *config.Config)) *harness {

	cfg := config.Default()
	cfg.Scene.Text = "Hi"
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		bus:      events.NewBus(),
		display:  &fakeDisplay{scale: 1},
		renderer: &fakeRenderer{},
	}

	h.view = NewView(Options{
		Config:  cfg,
		Assets:  fsys,
		Display: h.display,
		Bus:     h.bus,
		NewRenderer: func(w, hh int) (Renderer, error) {
			h.renderer.SetSize(w, hh)
			return h.renderer, nil
		},
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Width:  800,
		Height: 600,
	})

	return h

}

// settle waits for the background loads and runs their callbacks.
func (h *harness) settle() {
	h.view.loader.Wait()
	h.view.Update()
}

func assetsFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"textures/matcaps/8.png": {Data: matcapPNG(t)},
	}
}

func TestBuildScenePlacement(t *testing.T) {

	scene := engine.NewScene("test")
	material := engine.NewMaterial("matcap", nil)
	rng := rand.New(rand.NewPCG(7, 7))

	require.NoError(t, BuildScene(scene, squareFont{}, material, SceneOptions{TorusCount: DefaultTorusCount}, rng))
	require.Equal(t, DefaultTorusCount, scene.Len())

	mesh := scene.Models()[0].Mesh

	for _, model := range scene.Models() {

		for _, v := range []float32{model.Position.X, model.Position.Y, model.Position.Z} {
			assert.GreaterOrEqual(t, v, float32(-5))
			assert.Less(t, v, float32(5))
		}

		for _, r := range []float32{model.Rotation.X, model.Rotation.Y} {
			assert.GreaterOrEqual(t, r, float32(0))
			assert.Less(t, r, 2*math32.Pi)
		}
		assert.Zero(t, model.Rotation.Z)

		assert.GreaterOrEqual(t, model.Scale.X, float32(0))
		assert.Less(t, model.Scale.X, float32(1))
		assert.Equal(t, model.Scale.X, model.Scale.Y)
		assert.Equal(t, model.Scale.X, model.Scale.Z)

		assert.Same(t, mesh, model.Mesh)
		assert.Same(t, material, model.Material)

	}

}

func TestBuildSceneReproducible(t *testing.T) {

	build := func() []engine.Vector3 {
		scene := engine.NewScene("test")
		require.NoError(t, BuildScene(scene, squareFont{}, engine.NewMaterial("m", nil), SceneOptions{TorusCount: 10}, rand.New(rand.NewPCG(3, 4))))
		out := []engine.Vector3{}
		for _, m := range scene.Models() {
			out = append(out, m.Position)
		}
		return out
	}

	assert.Equal(t, build(), build())

}

func TestBuildSceneText(t *testing.T) {

	scene := engine.NewScene("test")
	require.NoError(t, BuildScene(scene, squareFont{}, engine.NewMaterial("m", nil), SceneOptions{Text: "abc", TorusCount: 2}, rand.New(rand.NewPCG(1, 1))))
	require.Equal(t, 3, scene.Len())

	text := scene.Models()[0]
	assert.Equal(t, "Text", text.Name)
	center := text.Mesh.Dimensions.Center()
	assert.InDelta(t, 0, center.X, 1e-5)
	assert.InDelta(t, 0, center.Y, 1e-5)
	assert.InDelta(t, 0, center.Z, 1e-5)
	// Depth plus a bevel on each side.
	assert.InDelta(t, 0.26, text.Mesh.Dimensions.Depth(), 1e-4)

}

func TestMountBuildsSceneOnce(t *testing.T) {

	h := newHarness(t, assetsFS(t), nil)
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	assert.Equal(t, StatusLoading, h.view.Status())
	h.view.Frame()
	assert.Equal(t, 0, h.renderer.lastLen, "nothing shows before both loads finish")

	h.settle()

	require.Equal(t, StatusReady, h.view.Status())
	assert.Empty(t, h.view.LoadErrors())
	assert.Equal(t, DefaultTorusCount+1, h.view.Scene().Len())

	material := h.view.Scene().Models()[0].Material
	require.NotNil(t, material)
	assert.NotNil(t, material.Matcap)
	assert.Equal(t, engine.ColorSpaceSRGB, material.ColorSpace)
	for _, m := range h.view.Scene().Models() {
		assert.Same(t, material, m.Material)
	}
	assert.Nil(t, h.view.font)

	h.view.Update()
	assert.Equal(t, DefaultTorusCount+1, h.view.Scene().Len())

	h.view.Frame()
	assert.Equal(t, DefaultTorusCount+1, h.renderer.lastLen)

}

func TestCameraSetup(t *testing.T) {

	h := newHarness(t, assetsFS(t), nil)
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	camera := h.view.Camera()
	assert.Equal(t, float32(75), camera.FieldOfView())
	assert.Equal(t, float32(0.1), camera.Near())
	assert.Equal(t, float32(100), camera.Far())
	assert.Equal(t, float32(800)/float32(600), camera.AspectRatio())
	assert.InDelta(t, 0, camera.Position.X, 1e-5)
	assert.InDelta(t, 0, camera.Position.Y, 1e-5)
	assert.InDelta(t, 3, camera.Position.Z, 1e-5)

	assert.True(t, h.view.Controls().EnableDamping)
	assert.Equal(t, float32(0.05), h.view.Controls().DampingFactor)

}

func TestResize(t *testing.T) {

	tests := []struct {
		w, h      int
		scale     float64
		wantRatio float64
	}{
		{1024, 768, 1, 1},
		{333, 777, 1.5, 1.5},
		{1920, 1080, 2, 2},
		{2560, 1440, 3, 2},
		{100, 1, 4.5, 2},
		{640, 480, 0, 1},
	}

	h := newHarness(t, assetsFS(t), nil)
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	for _, test := range tests {

		h.bus.Emit(events.Event{Kind: events.Resize, Width: test.w, Height: test.h, DeviceScaleFactor: test.scale})

		assert.Equal(t, float32(test.w)/float32(test.h), h.view.Camera().AspectRatio())
		assert.Equal(t, test.wantRatio, h.renderer.ratio)
		assert.LessOrEqual(t, h.renderer.ratio, 2.0)
		assert.Equal(t, test.w, h.renderer.w)
		assert.Equal(t, test.h, h.renderer.h)

		w, hh, ratio := h.view.Viewport()
		assert.Equal(t, test.w, w)
		assert.Equal(t, test.h, hh)
		assert.Equal(t, test.wantRatio, ratio)

	}

	// A collapsed window leaves everything as it was.
	h.bus.Emit(events.Event{Kind: events.Resize, Width: 500, Height: 0, DeviceScaleFactor: 1})
	assert.Equal(t, float32(640)/float32(480), h.view.Camera().AspectRatio())

}

func TestResizePixelRatioLimit(t *testing.T) {

	tests := []struct {
		limit     float64
		scale     float64
		wantRatio float64
	}{
		{1.5, 3, 1.5},
		{1.5, 1, 1},
		// Settings that skipped validation still can't push the ratio past 2.
		{4, 3, 2},
		{4, 1.75, 1.75},
		{0, 3, 2},
	}

	for _, test := range tests {

		h := newHarness(t, assetsFS(t), func(cfg *config.Config) {
			cfg.Window.MaxPixelRatio = test.limit
		})
		require.NoError(t, h.view.Mount())

		h.bus.Emit(events.Event{Kind: events.Resize, Width: 800, Height: 600, DeviceScaleFactor: test.scale})
		assert.Equal(t, test.wantRatio, h.renderer.ratio, "limit %v, scale %v", test.limit, test.scale)
		assert.LessOrEqual(t, h.renderer.ratio, float64(MaxPixelRatio))

		h.view.Unmount()

	}

}

func TestDoubleClickTogglesFullscreen(t *testing.T) {

	h := newHarness(t, assetsFS(t), nil)
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	h.bus.Emit(events.Event{Kind: events.DoubleClick})
	assert.True(t, h.display.fullscreen)

	h.bus.Emit(events.Event{Kind: events.DoubleClick})
	assert.False(t, h.display.fullscreen)

	for i := 0; i < 11; i++ {
		h.bus.Emit(events.Event{Kind: events.DoubleClick})
	}
	assert.True(t, h.display.fullscreen)

}

func TestPointerNDC(t *testing.T) {

	h := newHarness(t, assetsFS(t), nil)
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	tests := []struct {
		x, y         float32
		wantX, wantY float32
	}{
		{0, 0, -1, 1},
		{400, 300, 0, 0},
		{800, 600, 1, -1},
		{200, 450, -0.5, -0.5},
	}

	for _, test := range tests {
		h.bus.Emit(events.Event{Kind: events.PointerMove, X: test.x, Y: test.y})
		x, y := h.view.Pointer()
		assert.InDelta(t, test.wantX, x, 1e-6)
		assert.InDelta(t, test.wantY, y, 1e-6)
	}

}

func TestMountUnmountListeners(t *testing.T) {

	h := newHarness(t, assetsFS(t), nil)

	require.NoError(t, h.view.Mount())
	assert.ErrorIs(t, h.view.Mount(), ErrMounted)
	assert.Equal(t, 8, h.bus.Len())

	h.view.Unmount()

	assert.Zero(t, h.bus.Len())
	assert.False(t, h.view.Alive())
	assert.True(t, h.renderer.disposed)
	assert.True(t, h.view.Controls().Disposed())

	assert.NotPanics(t, func() {
		h.view.Unmount()
		h.view.Update()
		h.view.Frame()
		h.bus.Emit(events.Event{Kind: events.DoubleClick})
	})
	assert.Zero(t, h.renderer.renders)
	assert.False(t, h.display.fullscreen)

	// Remounting works and registers the same listeners again.
	h.renderer.disposed = false
	require.NoError(t, h.view.Mount())
	assert.Equal(t, 8, h.bus.Len())
	h.view.Unmount()
	assert.Zero(t, h.bus.Len())

}

func TestTextureLoadFailure(t *testing.T) {

	h := newHarness(t, fstest.MapFS{}, nil)
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	h.settle()
	h.settle()

	require.Len(t, h.view.LoadErrors(), 1)
	assert.ErrorIs(t, h.view.LoadErrors()[0], fs.ErrNotExist)
	assert.Equal(t, StatusFailed, h.view.Status())

	assert.NotPanics(t, h.view.Frame)
	assert.Equal(t, 1, h.renderer.renders)
	assert.Zero(t, h.renderer.lastLen)

}

func TestFontLoadFailure(t *testing.T) {

	h := newHarness(t, assetsFS(t), func(cfg *config.Config) {
		cfg.Assets.Font = "/helvetiker_regular.typeface.json"
	})
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	h.settle()

	require.Len(t, h.view.LoadErrors(), 1)
	assert.Equal(t, StatusFailed, h.view.Status())
	assert.Zero(t, h.view.Scene().Len())

}

// blockingFS holds up opening one file until release is closed.
type blockingFS struct {
	fs.FS
	block   string
	release chan struct{}
}

func (b blockingFS) Open(name string) (fs.File, error) {
	if name == b.block {
		<-b.release
	}
	return b.FS.Open(name)
}

func TestUnmountDuringLoad(t *testing.T) {

	files := assetsFS(t)
	files["fonts/slow.typeface.json"] = &fstest.MapFile{Data: []byte(`{"familyName":"Slow","resolution":1000,"glyphs":{}}`)}

	fsys := blockingFS{FS: files, block: "fonts/slow.typeface.json", release: make(chan struct{})}

	h := newHarness(t, fsys, func(cfg *config.Config) {
		cfg.Assets.Font = "/fonts/slow.typeface.json"
	})
	require.NoError(t, h.view.Mount())

	scene := h.view.Scene()
	loader := h.view.loader

	h.view.Unmount()
	close(fsys.release)
	loader.Wait()

	assert.NotPanics(t, func() {
		h.view.Update()
		h.view.Frame()
		// Results arriving through any path after Unmount are ignored.
		h.view.onFont(nil)
		h.view.onTexture(nil)
		h.view.onLoadError(errors.New("late"))
	})

	assert.True(t, scene.Disposed())
	assert.Zero(t, scene.Len())
	assert.Empty(t, h.view.LoadErrors())
	assert.Zero(t, h.renderer.renders)

}

func solidPNG(t *testing.T, size int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestTextureReload(t *testing.T) {

	files := assetsFS(t)
	files["fonts/go.ttf"] = &fstest.MapFile{Data: goregular.TTF}

	fsys := blockingFS{FS: files, block: "fonts/go.ttf", release: make(chan struct{})}

	h := newHarness(t, fsys, func(cfg *config.Config) {
		cfg.Assets.Font = "/fonts/go.ttf"
	})
	require.NoError(t, h.view.Mount())
	defer h.view.Unmount()

	texture := h.view.opt.Config.Assets.Texture
	h.view.reloads = make(chan string, 1)

	// The font is held back, so the scene isn't built yet and a reload has no material to update.
	h.view.reloads <- texture
	require.Eventually(t, func() bool {
		h.view.Update()
		return h.view.loader.Pending() == 1
	}, 5*time.Second, 5*time.Millisecond)

	assert.Nil(t, h.view.material)
	assert.Equal(t, StatusLoading, h.view.Status())
	assert.Empty(t, h.renderer.forgotten)

	close(fsys.release)
	h.settle()
	require.Equal(t, StatusReady, h.view.Status())

	material := h.view.material
	require.NotNil(t, material)
	old := material.Matcap
	require.Equal(t, image.Rect(0, 0, 8, 8), old.Bounds())

	files["textures/matcaps/8.png"] = &fstest.MapFile{Data: solidPNG(t, 16, color.NRGBA{255, 0, 0, 255})}

	h.view.reloads <- texture
	h.view.Update()
	h.settle()

	require.NotNil(t, material.Matcap)
	assert.Equal(t, image.Rect(0, 0, 16, 16), material.Matcap.Bounds())
	assert.Equal(t, engine.ColorSpaceSRGB, material.ColorSpace)
	require.Len(t, h.renderer.forgotten, 1)
	assert.Same(t, old, h.renderer.forgotten[0])

	for _, m := range h.view.Scene().Models() {
		assert.Same(t, material, m.Material, "every model keeps sharing the reloaded material")
	}
	assert.Equal(t, DefaultTorusCount+1, h.view.Scene().Len())

}
