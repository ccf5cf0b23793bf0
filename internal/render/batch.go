package render

import (
	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/donutfield/internal/engine"
)

// maxTriangles is how many triangles fit in one draw call; each triangle gets its own three vertices and ebitengine
// caps a call at 65535 vertices.
const maxTriangles = 21845

const sortingBins = 64

// chunk is a single draw call's worth of triangles. The vertices carry the matcap texel in SrcX / SrcY and the
// linear view depth (0 at the near plane, 1 at the far plane) in ColorR.
type chunk struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

func (c *chunk) triangleCount() int {
	return len(c.indices) / 3
}

// transformedVertex is a mesh vertex after running it through the camera.
type transformedVertex struct {
	clip   engine.Vector4
	screen [2]float32
	depth  float32
	uv     [2]float32
}

// batcher turns Models into chunks of screen-space vertices. It holds on to its buffers between frames.
type batcher struct {
	transformed []transformedVertex
	bucket      *triangleBucket
	chunks      []chunk
	used        int
}

func newBatcher() *batcher {
	return &batcher{bucket: newTriangleBucket(sortingBins)}
}

// batchTarget describes what the batcher is projecting onto.
type batchTarget struct {
	view, projection engine.Matrix4
	near, far        float32
	width, height    float32 // Size of the render target in pixels.
	texW, texH       float32 // Size of the matcap texture in pixels.
}

// Build transforms the Model's vertices, drops triangles that can't be seen, and sorts the rest back to front. The
// returned chunks are only valid until the next call to Build. Models are expected to be scaled uniformly, as the
// normals are transformed by the model-view matrix directly.
func (b *batcher) Build(model *engine.Model, target batchTarget, backfaceCulling bool) []chunk {

	b.used = 0
	b.bucket.Clear()

	mesh := model.Mesh
	if mesh == nil || len(mesh.Indices) < 3 {
		return nil
	}

	modelView := target.view.Mult(model.Transform())

	if cap(b.transformed) < len(mesh.VertexPositions) {
		b.transformed = make([]transformedVertex, len(mesh.VertexPositions))
	}
	b.transformed = b.transformed[:len(mesh.VertexPositions)]

	depthRange := target.far - target.near

	for i, pos := range mesh.VertexPositions {

		viewPos := modelView.MultVec(pos)
		clip := target.projection.MultVecW(viewPos)

		normal := engine.NewVector3(0, 0, 1)
		if i < len(mesh.VertexNormals) {
			normal = modelView.MultDir(mesh.VertexNormals[i]).Unit()
		}

		tv := &b.transformed[i]
		tv.clip = clip
		tv.depth = clamp((-viewPos.Z-target.near)/depthRange, 0, 1)
		tv.uv = matcapUV(viewPos, normal)

		if clip.W > 0 {
			tv.screen[0] = (clip.X/clip.W*0.5 + 0.5) * target.width
			tv.screen[1] = (0.5 - clip.Y/clip.W*0.5) * target.height
		}

	}

	triCount := len(mesh.Indices) / 3

	for t := 0; t < triCount; t++ {

		a := &b.transformed[mesh.Indices[t*3]]
		bb := &b.transformed[mesh.Indices[t*3+1]]
		c := &b.transformed[mesh.Indices[t*3+2]]

		// Anything crossing the near plane is skipped rather than clipped.
		if a.clip.W < target.near || bb.clip.W < target.near || c.clip.W < target.near {
			continue
		}

		if outsideFrustum(a.clip, bb.clip, c.clip) {
			continue
		}

		if backfaceCulling {
			// Screen Y points down, so counter-clockwise triangles have a negative area here.
			area := (bb.screen[0]-a.screen[0])*(c.screen[1]-a.screen[1]) - (bb.screen[1]-a.screen[1])*(c.screen[0]-a.screen[0])
			if area >= 0 {
				continue
			}
		}

		b.bucket.Add(t, (a.depth+bb.depth+c.depth)/3)

	}

	if b.bucket.Len() == 0 {
		return nil
	}

	b.bucket.Sort()

	current := b.nextChunk()

	b.bucket.ForEach(func(t int) {

		if current.triangleCount() >= maxTriangles {
			current = b.nextChunk()
		}

		for k := 0; k < 3; k++ {
			tv := &b.transformed[mesh.Indices[t*3+k]]
			current.indices = append(current.indices, uint16(len(current.vertices)))
			current.vertices = append(current.vertices, ebiten.Vertex{
				DstX:   tv.screen[0],
				DstY:   tv.screen[1],
				SrcX:   tv.uv[0] * target.texW,
				SrcY:   (1 - tv.uv[1]) * target.texH,
				ColorR: tv.depth,
				ColorG: 1,
				ColorB: 1,
				ColorA: 1,
			})
		}

	})

	return b.chunks[:b.used]

}

func (b *batcher) nextChunk() *chunk {
	if b.used == len(b.chunks) {
		b.chunks = append(b.chunks, chunk{})
	}
	c := &b.chunks[b.used]
	c.vertices = c.vertices[:0]
	c.indices = c.indices[:0]
	b.used++
	return c
}

// matcapUV maps a view-space normal to a point on the matcap, as seen from viewPos. The result is kept just inside
// the texture's circle.
func matcapUV(viewPos, normal engine.Vector3) [2]float32 {

	viewDir := viewPos.Invert().Unit()
	if viewDir.IsZero() {
		viewDir = engine.NewVector3(0, 0, 1)
	}

	x := engine.NewVector3(viewDir.Z, 0, -viewDir.X).Unit()
	if x.IsZero() {
		x = engine.NewVector3(1, 0, 0)
	}
	y := viewDir.Cross(x)

	return [2]float32{
		x.Dot(normal)*0.495 + 0.5,
		y.Dot(normal)*0.495 + 0.5,
	}

}

func outsideFrustum(a, b, c engine.Vector4) bool {
	return (a.X > a.W && b.X > b.W && c.X > c.W) ||
		(a.X < -a.W && b.X < -b.W && c.X < -c.W) ||
		(a.Y > a.W && b.Y > b.W && c.Y > c.W) ||
		(a.Y < -a.W && b.Y < -b.W && c.Y < -c.W) ||
		(a.Z > a.W && b.Z > b.W && c.Z > c.W)
}

func clamp(value, low, high float32) float32 {
	return math32.Max(low, math32.Min(high, value))
}
