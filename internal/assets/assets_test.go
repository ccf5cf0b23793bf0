package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/solarlune/donutfield/internal/typeface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), 128, 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"textures/matcaps/8.png": {Data: pngBytes(t, 4, 4)},
		"textures/wide.png":      {Data: pngBytes(t, 64, 32)},
		"fonts/go.ttf":           {Data: goregular.TTF},
		"fonts/test.typeface.json": {Data: []byte(`{
			"familyName": "Test", "resolution": 1000,
			"glyphs": {"a": {"ha": 500, "o": "m 0 0 l 100 0 l 100 100 z"}}
		}`)},
	}
}

func TestLoadTexture(t *testing.T) {
	loader := NewLoader(testFS(t), nil)

	var loaded []*Texture
	var progress []Progress
	errs := 0

	require.NoError(t, loader.LoadTexture("./textures/matcaps/8.png", Callbacks[*Texture]{
		OnLoad:     func(tex *Texture) { loaded = append(loaded, tex) },
		OnProgress: func(p Progress) { progress = append(progress, p) },
		OnError:    func(error) { errs++ },
	}))

	assert.Equal(t, 1, loader.Pending())
	loader.Wait()
	assert.Zero(t, len(loaded), "callbacks only run on Dispatch")

	assert.NotZero(t, loader.Dispatch())
	assert.Zero(t, loader.Pending())

	require.Len(t, loaded, 1)
	assert.Zero(t, errs)
	assert.Equal(t, "png", loaded[0].Format)
	assert.Equal(t, image.Rect(0, 0, 4, 4), loaded[0].Image.Bounds())

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, last.Total, last.Loaded)
}

func TestLoadTextureMissing(t *testing.T) {
	loader := NewLoader(testFS(t), nil)

	var got []error
	require.NoError(t, loader.LoadTexture("textures/nope.png", Callbacks[*Texture]{
		OnLoad:  func(*Texture) { t.Fatal("unexpected load") },
		OnError: func(err error) { got = append(got, err) },
	}))

	loader.Wait()
	loader.Dispatch()
	loader.Dispatch()

	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], fs.ErrNotExist)
}

func TestLoadTextureNotAnImage(t *testing.T) {
	loader := NewLoader(testFS(t), nil)

	var got error
	require.NoError(t, loader.LoadTexture("fonts/go.ttf", Callbacks[*Texture]{
		OnError: func(err error) { got = err },
	}))
	loader.Wait()
	loader.Dispatch()

	assert.ErrorContains(t, got, "not an image")
}

func TestDecodeTextureFormats(t *testing.T) {

	src := image.NewNRGBA(image.Rect(0, 0, 12, 6))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) },
		"webp": func(b *bytes.Buffer) error { return nativewebp.Encode(b, src, nil) },
		"tga":  func(b *bytes.Buffer) error { return tga.Encode(b, src) },
	}

	for format, encode := range encoders {
		t.Run(format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, encode(buf))

			tex, err := DecodeTexture("matcap."+format, buf.Bytes(), 0)
			require.NoError(t, err)
			assert.Equal(t, format, tex.Format)
			assert.Equal(t, image.Rect(0, 0, 12, 6), tex.Image.Bounds())
		})
	}

}

func TestDecodeShippedMatcap(t *testing.T) {

	data, err := os.ReadFile(filepath.Join("..", "..", "assets", "textures", "matcaps", "8.png"))
	require.NoError(t, err)

	tex, err := DecodeTexture("/textures/matcaps/8.png", data, 0)
	require.NoError(t, err)
	assert.Equal(t, "png", tex.Format)
	assert.Equal(t, image.Rect(0, 0, 256, 256), tex.Image.Bounds())

}

func TestDecodeTextureUnsupported(t *testing.T) {

	_, err := DecodeTexture("anim.gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), 0)
	assert.ErrorContains(t, err, "unsupported image format")

	_, err = DecodeTexture("empty.png", nil, 0)
	assert.Error(t, err)

}

func TestLoadTextureResize(t *testing.T) {
	loader := NewLoader(testFS(t), nil)
	loader.MaxTextureSize = 16

	var tex *Texture
	require.NoError(t, loader.LoadTexture("textures/wide.png", Callbacks[*Texture]{
		OnLoad: func(t *Texture) { tex = t },
	}))
	loader.Wait()
	loader.Dispatch()

	require.NotNil(t, tex)
	assert.Equal(t, 16, tex.Image.Bounds().Dx())
	assert.Equal(t, 8, tex.Image.Bounds().Dy())
}

func TestLoadFont(t *testing.T) {

	tests := []struct {
		path string
		name string
	}{
		{"", "Go"},
		{"fonts/go.ttf", "Go"},
		{"/fonts/test.typeface.json", "Test"},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			loader := NewLoader(testFS(t), nil)
			var font typeface.Font
			require.NoError(t, loader.LoadFont(test.path, Callbacks[typeface.Font]{
				OnLoad:  func(f typeface.Font) { font = f },
				OnError: func(err error) { t.Fatal(err) },
			}))
			loader.Wait()
			loader.Dispatch()
			require.NotNil(t, font)
			assert.Equal(t, test.name, font.Name())
			assert.Zero(t, loader.Pending())
		})
	}

}

func TestDecodeFontRejectsWebFonts(t *testing.T) {
	woff := append([]byte("wOFF\x00\x01\x00\x00"), make([]byte, 64)...)
	_, err := DecodeFont("a.woff", woff)
	assert.ErrorIs(t, err, typeface.ErrUnknownFormat)
}

func TestCloseDropsCallbacks(t *testing.T) {
	loader := NewLoader(testFS(t), nil)

	calls := 0
	cb := Callbacks[*Texture]{
		OnLoad:     func(*Texture) { calls++ },
		OnProgress: func(Progress) { calls++ },
		OnError:    func(error) { calls++ },
	}

	require.NoError(t, loader.LoadTexture("textures/matcaps/8.png", cb))
	require.NoError(t, loader.LoadTexture("textures/nope.png", cb))
	loader.Wait()

	loader.Close()
	assert.True(t, loader.Closed())
	assert.Zero(t, loader.Dispatch())
	assert.Zero(t, loader.Pending())
	assert.Zero(t, calls)

	assert.ErrorIs(t, loader.LoadTexture("textures/matcaps/8.png", cb), ErrClosed)
	assert.ErrorIs(t, loader.LoadFont("", Callbacks[typeface.Font]{}), ErrClosed)
}

func TestCloseFromCallback(t *testing.T) {
	loader := NewLoader(testFS(t), nil)

	calls := 0
	require.NoError(t, loader.LoadTexture("textures/matcaps/8.png", Callbacks[*Texture]{
		OnLoad: func(*Texture) {
			calls++
			loader.Close()
		},
	}))
	require.NoError(t, loader.LoadTexture("textures/wide.png", Callbacks[*Texture]{
		OnLoad: func(*Texture) { calls++ },
	}))

	loader.Wait()
	loader.Dispatch()

	assert.Equal(t, 1, calls)
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"/helvetiker_regular.typeface.json", "helvetiker_regular.typeface.json", true},
		{"./textures/matcaps/8.png", "textures/matcaps/8.png", true},
		{"textures//matcaps/8.png", "textures/matcaps/8.png", true},
		{"../secret", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		got, err := CleanPath(test.in)
		if !test.ok {
			assert.ErrorIs(t, err, fs.ErrInvalid, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))
	target := filepath.Join(dir, "textures", "m.png")
	require.NoError(t, os.WriteFile(target, pngBytes(t, 2, 2), 0o644))

	changed := make(chan string, 8)
	w, err := Watch(dir, []string{"/textures/m.png"}, NewLoader(nil, nil).logger, func(name string) {
		changed <- name
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "textures", "other.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, pngBytes(t, 3, 3), 0o644))

	select {
	case name := <-changed:
		assert.Equal(t, "/textures/m.png", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
