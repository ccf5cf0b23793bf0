// Package typeface turns font files into glyph outlines for extruded text. Two formats are understood: the
// typeface JSON format produced by facetype.js (glyph outlines stored as command strings), and TrueType / OpenType
// fonts read through golang.org/x/image/font/sfnt.
package typeface

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/solarlune/donutfield/internal/geometry"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	// ErrUnknownFormat is returned by Parse for data that is neither typeface JSON nor an sfnt font.
	ErrUnknownFormat = errors.New("unknown font format")

	// ErrNoGlyph is returned when a character has no glyph and the font has no '?' glyph to stand in for it.
	ErrNoGlyph = errors.New("no glyph for character")
)

// Font is a parsed font that can lay out text as outlines.
type Font interface {
	geometry.Font
	// Name returns the font's family name, if it has one.
	Name() string
}

// Parse detects the format of data and parses it.
func Parse(data []byte) (Font, error) {

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")

	switch {

	case len(trimmed) > 0 && trimmed[0] == '{':
		font, err := ParseJSON(trimmed)
		if err != nil {
			return nil, err
		}
		return font, nil

	case isSFNT(data):
		font, err := ParseOutline(data)
		if err != nil {
			return nil, err
		}
		return font, nil

	}

	return nil, ErrUnknownFormat

}

func isSFNT(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	switch string(data[:4]) {
	case "\x00\x01\x00\x00", "OTTO", "true", "typ1", "ttcf":
		return true
	}
	return false
}

// Default returns the built-in Go Regular font.
func Default() Font {
	font, err := ParseOutline(goregular.TTF)
	if err != nil {
		// goregular.TTF is compiled in; failing to parse it means a broken build.
		panic(fmt.Sprintf("typeface: parsing built-in font: %v", err))
	}
	return font
}
