package typeface

import (
	"errors"
	"fmt"

	"github.com/solarlune/donutfield/internal/geometry"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// OutlineFont is a TrueType or OpenType font.
type OutlineFont struct {
	font *sfnt.Font
	name string
}

// ParseOutline parses TrueType or OpenType font data.
func ParseOutline(data []byte) (*OutlineFont, error) {

	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("sfnt: %w", err)
	}

	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil && !errors.Is(err, sfnt.ErrNotFound) {
		return nil, fmt.Errorf("sfnt name: %w", err)
	}

	return &OutlineFont{font: f, name: name}, nil

}

// Name returns the font's family name.
func (o *OutlineFont) Name() string {
	return o.name
}

// Paths implements geometry.Font. Outlines are loaded unhinted at one pixel per font unit and then scaled, so
// no precision is lost to the 26.6 fixed-point format. Kerning is applied when the font has a kern table.
func (o *OutlineFont) Paths(text string, size float32) ([]*geometry.Path, error) {

	// Buffers aren't safe for concurrent use; a local one keeps Paths safe to call from any goroutine.
	var buf sfnt.Buffer

	upem := o.font.UnitsPerEm()
	ppem := fixed.I(int(upem))
	scale := size / float32(upem)

	metrics, err := o.font.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("sfnt metrics: %w", err)
	}

	lineHeight := float32(metrics.Height) / 64 * scale

	paths := []*geometry.Path{}
	penX := fixed.Int26_6(0)
	offsetY := float32(0)
	var prev sfnt.GlyphIndex

	for _, r := range text {

		if r == '\n' {
			penX = 0
			offsetY -= lineHeight
			prev = 0
			continue
		}

		gi, err := o.glyphIndex(&buf, r)
		if err != nil {
			return nil, err
		}

		if prev != 0 {
			kern, err := o.font.Kern(&buf, prev, gi, ppem, font.HintingNone)
			if err == nil {
				penX += kern
			} else if !errors.Is(err, sfnt.ErrNotFound) {
				return nil, fmt.Errorf("sfnt kern: %w", err)
			}
		}

		segments, err := o.font.LoadGlyph(&buf, gi, ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("sfnt glyph %q: %w", r, err)
		}

		originX := float32(penX) / 64

		// sfnt's Y axis points down.
		pt := func(p fixed.Point26_6) (float32, float32) {
			return (originX + float32(p.X)/64) * scale, -float32(p.Y)/64*scale + offsetY
		}

		path := geometry.NewPath()

		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				x, y := pt(seg.Args[0])
				path.MoveTo(x, y)
			case sfnt.SegmentOpLineTo:
				x, y := pt(seg.Args[0])
				path.LineTo(x, y)
			case sfnt.SegmentOpQuadTo:
				cx, cy := pt(seg.Args[0])
				x, y := pt(seg.Args[1])
				path.QuadTo(cx, cy, x, y)
			case sfnt.SegmentOpCubeTo:
				c1x, c1y := pt(seg.Args[0])
				c2x, c2y := pt(seg.Args[1])
				x, y := pt(seg.Args[2])
				path.CubeTo(c1x, c1y, c2x, c2y, x, y)
			}
		}

		if !path.Empty() {
			paths = append(paths, path)
		}

		advance, err := o.font.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("sfnt advance %q: %w", r, err)
		}

		penX += advance
		prev = gi

	}

	return paths, nil

}

func (o *OutlineFont) glyphIndex(buf *sfnt.Buffer, r rune) (sfnt.GlyphIndex, error) {

	for _, c := range []rune{r, '?'} {
		gi, err := o.font.GlyphIndex(buf, c)
		if err != nil {
			return 0, fmt.Errorf("sfnt glyph index %q: %w", c, err)
		}
		if gi != 0 {
			return gi, nil
		}
	}

	return 0, fmt.Errorf("%q: %w", r, ErrNoGlyph)

}
