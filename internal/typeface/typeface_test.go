package typeface

import (
	"testing"

	"github.com/solarlune/donutfield/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const testTypeface = `{
	"familyName": "Test Sans",
	"resolution": 1000,
	"ascender": 800,
	"descender": -200,
	"underlineThickness": 50,
	"boundingBox": {"xMin": 0, "xMax": 1000, "yMin": -200, "yMax": 800},
	"glyphs": {
		"a": {"ha": 600, "x_min": 0, "x_max": 500, "o": "m 0 0 l 500 0 l 500 500 l 0 500 z"},
		"q": {"ha": 700, "o": "m 0 0 q 100 0 50 50"},
		"b": {"ha": 700, "o": "m 0 0 b 100 0 0 100 100 100"},
		" ": {"ha": 300}
	}
}`

func TestParseDetectsFormat(t *testing.T) {
	font, err := Parse([]byte("\n  " + testTypeface))
	require.NoError(t, err)
	assert.IsType(t, &JSONFont{}, font)
	assert.Equal(t, "Test Sans", font.Name())

	font, err = Parse(goregular.TTF)
	require.NoError(t, err)
	assert.IsType(t, &OutlineFont{}, font)
	assert.Equal(t, "Go", font.Name())

	_, err = Parse([]byte("GIF89a"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSONLayout(t *testing.T) {
	font, err := ParseJSON([]byte(testTypeface))
	require.NoError(t, err)

	paths, err := font.Paths("a a", 1)
	require.NoError(t, err)
	// The space has no outline, but still advances the pen.
	require.Len(t, paths, 2)

	first := paths[0].Contours(1)
	second := paths[1].Contours(1)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.InDelta(t, 0.25, geometry.SignedArea(first[0]), 1e-6)
	assert.InDelta(t, 0.9, second[0][0].X-first[0][0].X, 1e-6)
}

func TestJSONNewline(t *testing.T) {
	font, err := ParseJSON([]byte(testTypeface))
	require.NoError(t, err)

	paths, err := font.Paths("a\na", 1)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	first, second := paths[0].Contours(1)[0], paths[1].Contours(1)[0]
	assert.Equal(t, first[0].X, second[0].X)
	assert.InDelta(t, -font.LineHeight(1), second[0].Y-first[0].Y, 1e-6)
	assert.InDelta(t, 1.05, font.LineHeight(1), 1e-6)
}

func TestJSONCurveArguments(t *testing.T) {
	font, err := ParseJSON([]byte(testTypeface))
	require.NoError(t, err)

	// "q" lists the end point before the control point.
	paths, err := font.Paths("q", 1)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	contour := paths[0].Contours(2)[0]
	require.Len(t, contour, 3)
	assert.InDelta(t, 0.05, contour[1].X, 1e-6)
	assert.InDelta(t, 0.025, contour[1].Y, 1e-6)
	assert.InDelta(t, 0.1, contour[2].X, 1e-6)
	assert.InDelta(t, 0, contour[2].Y, 1e-6)

	// "b" lists the end point and then both control points.
	paths, err = font.Paths("b", 1)
	require.NoError(t, err)
	contour = paths[0].Contours(2)[0]
	require.Len(t, contour, 3)
	// At t = 0.5 with start (0,0), controls (0,0.1) and (0.1,0.1), end (0.1,0).
	assert.InDelta(t, 0.05, contour[1].X, 1e-6)
	assert.InDelta(t, 0.075, contour[1].Y, 1e-6)
}

func TestJSONMissingGlyph(t *testing.T) {
	font, err := ParseJSON([]byte(testTypeface))
	require.NoError(t, err)

	_, err = font.Paths("Z", 1)
	assert.ErrorIs(t, err, ErrNoGlyph)

	font.Glyphs["?"] = font.Glyphs["a"]
	paths, err := font.Paths("Z", 1)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestJSONErrors(t *testing.T) {
	_, err := ParseJSON([]byte(`{"resolution": 1000}`))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseJSON([]byte(`{"resolution": 0, "glyphs": {}}`))
	assert.Error(t, err)

	font, err := ParseJSON([]byte(`{"resolution": 1000, "glyphs": {"x": {"ha": 1, "o": "m 0 0 k 1 1"}}}`))
	require.NoError(t, err)
	_, err = font.Paths("x", 1)
	assert.Error(t, err)

	font, err = ParseJSON([]byte(`{"resolution": 1000, "glyphs": {"x": {"ha": 1, "o": "m 0"}}}`))
	require.NoError(t, err)
	_, err = font.Paths("x", 1)
	assert.Error(t, err)
}

func TestOutlineFont(t *testing.T) {
	font := Default()

	paths, err := font.Paths("Go", 0.5)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	g := geometry.ShapesFromContours(paths[0].Contours(5))
	o := geometry.ShapesFromContours(paths[1].Contours(5))

	require.Len(t, g, 1)
	require.Len(t, o, 1)
	assert.Empty(t, g[0].Holes)
	assert.Len(t, o[0].Holes, 1)

	// Glyphs sit on the baseline, Y up, roughly cap height tall.
	var maxY float32
	for _, p := range g[0].Outer {
		maxY = max(maxY, p.Y)
	}
	assert.Greater(t, maxY, float32(0.2))
	assert.Less(t, maxY, float32(0.5))

	// "o" is laid out to the right of "G".
	assert.Greater(t, o[0].Outer[0].X, g[0].Outer[0].X)
}

func TestOutlineFontFallback(t *testing.T) {
	paths, err := Default().Paths("\U000F0000", 1)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestOutlineTextMesh(t *testing.T) {
	opt := geometry.TextOptions{
		Size: 0.5,
		ExtrudeOptions: geometry.ExtrudeOptions{
			Depth:          0.2,
			CurveSegments:  5,
			BevelEnabled:   true,
			BevelThickness: 0.03,
			BevelSize:      0.02,
			BevelSegments:  4,
		},
	}

	mesh, err := geometry.NewText(Default(), "Ebitengine is Cool", opt)
	if err != nil {
		// A partially resolved glyph still leaves a usable mesh.
		require.ErrorIs(t, err, geometry.ErrDegenerate)
	}
	require.NotNil(t, mesh)
	require.NotZero(t, mesh.TriangleCount())

	mesh.Center()
	dim := mesh.Dimensions
	assert.InDelta(t, 0, dim.Center().X, 1e-4)
	assert.InDelta(t, 0, dim.Center().Y, 1e-4)
	assert.InDelta(t, 0, dim.Center().Z, 1e-4)
	assert.InDelta(t, 0.26, dim.Depth(), 1e-4)
}
