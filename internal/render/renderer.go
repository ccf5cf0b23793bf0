// Package render draws an engine.Scene with ebitengine. Vertices are transformed on the CPU; the GPU only rasterizes
// triangles, using a depth shader and a matcap shader.
package render

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/donutfield/internal/engine"
)

//go:embed shaders/depth.kage
var depthShaderText []byte

//go:embed shaders/matcap.kage
var matcapShaderText []byte

// DebugInfo holds statistics about the last rendered frame.
type DebugInfo struct {
	FrameTime   time.Duration // CPU time spent transforming vertices and queueing draw calls.
	TotalModels int
	DrawnModels int // Models with at least one triangle on screen
	TotalTris   int
	DrawnTris   int // Triangles left after culling
	DrawCalls   int
}

// Renderer draws a Scene into a color texture sized to the viewport multiplied by the pixel ratio.
type Renderer struct {
	width, height int
	pixelRatio    float64

	colorTexture      *ebiten.Image
	depthTexture      *ebiten.Image
	depthIntermediate *ebiten.Image

	depthShader  *ebiten.Shader
	matcapShader *ebiten.Shader

	textures   map[image.Image]*ebiten.Image
	whiteImage *ebiten.Image

	batcher  *batcher
	disposed bool

	DebugInfo DebugInfo
}

// NewRenderer creates a Renderer for a viewport of w by h logical pixels with a pixel ratio of 1.
func NewRenderer(w, h int) (*Renderer, error) {

	depthShader, err := ebiten.NewShader(depthShaderText)
	if err != nil {
		return nil, fmt.Errorf("compiling depth shader: %w", err)
	}

	matcapShader, err := ebiten.NewShader(matcapShaderText)
	if err != nil {
		depthShader.Deallocate()
		return nil, fmt.Errorf("compiling matcap shader: %w", err)
	}

	white := ebiten.NewImage(4, 4)
	white.Fill(color.White)

	renderer := &Renderer{
		pixelRatio:   1,
		depthShader:  depthShader,
		matcapShader: matcapShader,
		textures:     map[image.Image]*ebiten.Image{},
		whiteImage:   white,
		batcher:      newBatcher(),
	}

	renderer.SetSize(w, h)

	return renderer, nil

}

// SetSize sets the viewport size in logical pixels. The backing textures are recreated if their size changes.
func (renderer *Renderer) SetSize(w, h int) {
	renderer.width = max(w, 1)
	renderer.height = max(h, 1)
	renderer.resize()
}

// Size returns the viewport size in logical pixels.
func (renderer *Renderer) Size() (w, h int) {
	return renderer.width, renderer.height
}

// SetPixelRatio sets how many texture pixels make up one logical pixel.
func (renderer *Renderer) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	renderer.pixelRatio = ratio
	renderer.resize()
}

// PixelRatio returns the pixel ratio set with SetPixelRatio.
func (renderer *Renderer) PixelRatio() float64 {
	return renderer.pixelRatio
}

// BufferSize returns the size of the color texture in pixels.
func (renderer *Renderer) BufferSize() (w, h int) {
	return BufferSize(renderer.width, renderer.height, renderer.pixelRatio)
}

// BufferSize returns the size in pixels of a w by h viewport at the given pixel ratio.
func BufferSize(w, h int, pixelRatio float64) (int, int) {
	return max(1, int(math32.Ceil(float32(float64(w)*pixelRatio)))), max(1, int(math32.Ceil(float32(float64(h)*pixelRatio))))
}

func (renderer *Renderer) resize() {

	if renderer.disposed {
		return
	}

	w, h := renderer.BufferSize()

	if renderer.colorTexture != nil {
		if b := renderer.colorTexture.Bounds(); b.Dx() == w && b.Dy() == h {
			return
		}
		renderer.colorTexture.Deallocate()
		renderer.depthTexture.Deallocate()
		renderer.depthIntermediate.Deallocate()
	}

	renderer.colorTexture = ebiten.NewImage(w, h)
	renderer.depthTexture = ebiten.NewImage(w, h)
	renderer.depthIntermediate = ebiten.NewImage(w, h)

}

// ColorTexture returns the texture the last frame was rendered to.
func (renderer *Renderer) ColorTexture() *ebiten.Image {
	return renderer.colorTexture
}

// DepthTexture returns the depth of the last frame, encoded across the red, green and blue channels.
func (renderer *Renderer) DepthTexture() *ebiten.Image {
	return renderer.depthTexture
}

// Render clears the color texture to the Scene's clear color and draws the Scene's visible Models from the Camera.
func (renderer *Renderer) Render(scene *engine.Scene, camera *engine.Camera) {

	if renderer.disposed || scene == nil || camera == nil {
		return
	}

	start := time.Now()
	renderer.DebugInfo = DebugInfo{}

	renderer.colorTexture.Fill(scene.ClearColor.ToRGBA64())
	renderer.depthTexture.Clear()

	w, h := renderer.BufferSize()

	target := batchTarget{
		view:       camera.ViewMatrix(),
		projection: camera.Projection(),
		near:       camera.Near(),
		far:        camera.Far(),
		width:      float32(w),
		height:     float32(h),
	}

	for _, model := range scene.Models() {

		if !model.Visible || model.Mesh == nil {
			continue
		}

		renderer.DebugInfo.TotalModels++
		renderer.DebugInfo.TotalTris += model.Mesh.TriangleCount()

		mat := model.Material
		if mat == nil {
			mat = engine.NewMaterial("default", nil)
		}

		tex := renderer.texture(mat.Matcap)
		target.texW = float32(tex.Bounds().Dx())
		target.texH = float32(tex.Bounds().Dy())

		chunks := renderer.batcher.Build(model, target, mat.BackfaceCulling)

		if len(chunks) > 0 {
			renderer.DebugInfo.DrawnModels++
		}

		linear := 0
		if mat.ColorSpace == engine.ColorSpaceLinear && mat.Matcap != nil {
			linear = 1
		}

		for i := range chunks {
			renderer.drawChunk(&chunks[i], tex, mat.Color, linear)
		}

	}

	renderer.DebugInfo.FrameTime = time.Since(start)

}

func (renderer *Renderer) drawChunk(c *chunk, tex *ebiten.Image, tint engine.Color, linear int) {

	renderer.DebugInfo.DrawnTris += c.triangleCount()
	renderer.DebugInfo.DrawCalls++

	renderer.depthIntermediate.Clear()

	renderer.depthIntermediate.DrawTrianglesShader(c.vertices, c.indices, renderer.depthShader, &ebiten.DrawTrianglesShaderOptions{
		Images: [4]*ebiten.Image{renderer.depthTexture},
	})

	renderer.depthTexture.DrawImage(renderer.depthIntermediate, nil)

	renderer.colorTexture.DrawTrianglesShader(c.vertices, c.indices, renderer.matcapShader, &ebiten.DrawTrianglesShaderOptions{
		Images: [4]*ebiten.Image{tex, renderer.depthIntermediate},
		Uniforms: map[string]any{
			"Tint":   []float32{tint.R, tint.G, tint.B, tint.A},
			"Linear": linear,
		},
	})

}

// texture returns the GPU copy of img, creating it the first time img is seen.
func (renderer *Renderer) texture(img image.Image) *ebiten.Image {

	if img == nil {
		return renderer.whiteImage
	}

	if eimg, ok := img.(*ebiten.Image); ok {
		return eimg
	}

	tex, ok := renderer.textures[img]
	if !ok {
		tex = ebiten.NewImageFromImage(img)
		renderer.textures[img] = tex
	}

	return tex

}

// ForgetTexture releases the GPU copy of img, if there is one. Call it when a matcap is replaced.
func (renderer *Renderer) ForgetTexture(img image.Image) {
	if tex, ok := renderer.textures[img]; ok {
		tex.Deallocate()
		delete(renderer.textures, img)
	}
}

// Dispose releases the Renderer's textures and shaders. Rendering afterwards does nothing.
func (renderer *Renderer) Dispose() {

	if renderer.disposed {
		return
	}

	renderer.disposed = true

	for img, tex := range renderer.textures {
		tex.Deallocate()
		delete(renderer.textures, img)
	}

	renderer.whiteImage.Deallocate()
	renderer.colorTexture.Deallocate()
	renderer.depthTexture.Deallocate()
	renderer.depthIntermediate.Deallocate()
	renderer.depthShader.Deallocate()
	renderer.matcapShader.Deallocate()

}

// Disposed returns true once Dispose has been called.
func (renderer *Renderer) Disposed() bool {
	return renderer.disposed
}
