package typeface

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/solarlune/donutfield/internal/geometry"
)

type jsonGlyph struct {
	Advance float32 `json:"ha"`
	XMin    float32 `json:"x_min"`
	XMax    float32 `json:"x_max"`
	Outline string  `json:"o"`

	commands []string
}

// JSONFont is a font in the typeface JSON format. Glyph coordinates are in font units, resolution units to
// the em.
type JSONFont struct {
	FamilyName         string                `json:"familyName"`
	Resolution         float32               `json:"resolution"`
	Ascender           float32               `json:"ascender"`
	Descender          float32               `json:"descender"`
	UnderlinePosition  float32               `json:"underlinePosition"`
	UnderlineThickness float32               `json:"underlineThickness"`
	Glyphs             map[string]*jsonGlyph `json:"glyphs"`
	BoundingBox        struct {
		XMin float32 `json:"xMin"`
		XMax float32 `json:"xMax"`
		YMin float32 `json:"yMin"`
		YMax float32 `json:"yMax"`
	} `json:"boundingBox"`
}

// ParseJSON parses a typeface JSON document.
func ParseJSON(data []byte) (*JSONFont, error) {

	font := &JSONFont{}

	if err := json.Unmarshal(data, font); err != nil {
		return nil, fmt.Errorf("typeface json: %w", err)
	}

	if font.Glyphs == nil {
		return nil, fmt.Errorf("typeface json: no glyphs: %w", ErrUnknownFormat)
	}

	if font.Resolution <= 0 {
		return nil, fmt.Errorf("typeface json: invalid resolution %v", font.Resolution)
	}

	for _, g := range font.Glyphs {
		if g != nil {
			g.commands = strings.Fields(g.Outline)
		}
	}

	return font, nil

}

// Name returns the font's family name.
func (font *JSONFont) Name() string {
	return font.FamilyName
}

// LineHeight returns the distance between baselines for text of the given size.
func (font *JSONFont) LineHeight(size float32) float32 {
	scale := size / font.Resolution
	return (font.BoundingBox.YMax - font.BoundingBox.YMin + font.UnderlineThickness) * scale
}

func (font *JSONFont) glyph(r rune) (*jsonGlyph, error) {
	if g := font.Glyphs[string(r)]; g != nil {
		return g, nil
	}
	if g := font.Glyphs["?"]; g != nil {
		return g, nil
	}
	return nil, fmt.Errorf("%q: %w", r, ErrNoGlyph)
}

// Paths implements geometry.Font. A newline starts a new line below the current one.
func (font *JSONFont) Paths(text string, size float32) ([]*geometry.Path, error) {

	scale := size / font.Resolution
	lineHeight := font.LineHeight(size)

	paths := []*geometry.Path{}
	offsetX, offsetY := float32(0), float32(0)

	for _, r := range text {

		if r == '\n' {
			offsetX = 0
			offsetY -= lineHeight
			continue
		}

		g, err := font.glyph(r)
		if err != nil {
			return nil, err
		}

		path, err := g.path(scale, offsetX, offsetY)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", r, err)
		}

		if !path.Empty() {
			paths = append(paths, path)
		}

		offsetX += g.Advance * scale

	}

	return paths, nil

}

// path replays the glyph's outline commands. "m" and "l" take a point; "q" takes the end point first and then
// the control point; "b" takes the end point and then both control points.
func (g *jsonGlyph) path(scale, offsetX, offsetY float32) (*geometry.Path, error) {

	path := geometry.NewPath()
	cmds := g.commands
	i := 0

	next := func(n int) ([]float32, error) {
		if i+n*2 > len(cmds) {
			return nil, fmt.Errorf("outline truncated at %d", i)
		}
		out := make([]float32, n*2)
		for k := range out {
			v, err := strconv.ParseFloat(cmds[i+k], 32)
			if err != nil {
				return nil, fmt.Errorf("outline value %q: %w", cmds[i+k], err)
			}
			if k%2 == 0 {
				out[k] = float32(v)*scale + offsetX
			} else {
				out[k] = float32(v)*scale + offsetY
			}
		}
		i += n * 2
		return out, nil
	}

	for i < len(cmds) {

		action := cmds[i]
		i++

		switch action {

		case "m":
			p, err := next(1)
			if err != nil {
				return nil, err
			}
			path.MoveTo(p[0], p[1])

		case "l":
			p, err := next(1)
			if err != nil {
				return nil, err
			}
			path.LineTo(p[0], p[1])

		case "q":
			p, err := next(2)
			if err != nil {
				return nil, err
			}
			path.QuadTo(p[2], p[3], p[0], p[1])

		case "b":
			p, err := next(3)
			if err != nil {
				return nil, err
			}
			path.CubeTo(p[2], p[3], p[4], p[5], p[0], p[1])

		case "z":
			path.Close()

		default:
			return nil, fmt.Errorf("unknown outline command %q", action)

		}

	}

	return path, nil

}
