package engine

import (
	"image/color"

	"github.com/chewxy/math32"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// ToRGBA64 converts the Color to a color.RGBA64 for use with image and ebiten APIs.
func (c Color) ToRGBA64() color.RGBA64 {
	clamp := func(v float32) uint16 {
		return uint16(math32.Max(0, math32.Min(1, v)) * 0xffff)
	}
	// RGBA64 is alpha-premultiplied.
	a := math32.Max(0, math32.Min(1, c.A))
	return color.RGBA64{clamp(c.R * a), clamp(c.G * a), clamp(c.B * a), clamp(a)}
}

// ColorSpace describes how a texture's stored values map to displayed colors.
type ColorSpace int

const (
	ColorSpaceLinear ColorSpace = iota // Texture values are linear and must be encoded before display.
	ColorSpaceSRGB                     // Texture values are already sRGB-encoded and are displayed as-is.
)

func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceSRGB:
		return "srgb"
	default:
		return "linear"
	}
}
