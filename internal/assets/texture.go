package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/transform"
	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"github.com/solarlune/donutfield/internal/engine"
	"golang.org/x/image/webp"
)

// Texture is a decoded image file.
type Texture struct {
	Path   string
	Image  image.Image
	Format string // Decoder that read the file, like "png" or "jpeg".

	// ColorSpace tells the renderer how to interpret the stored colors. Decoding leaves it at
	// engine.ColorSpaceLinear (no conversion); set it to engine.ColorSpaceSRGB for color images meant to be
	// shown as-is.
	ColorSpace engine.ColorSpace
}

// DecodeTexture decodes PNG, JPEG, WebP or TGA data. Images larger than maxSize on either side are scaled down,
// keeping their aspect ratio; a maxSize of 0 keeps the original size.
func DecodeTexture(name string, data []byte, maxSize int) (*Texture, error) {

	format, decode, err := decoderFor(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	if maxSize > 0 {
		img = fit(img, maxSize)
	}

	return &Texture{Path: name, Image: img, Format: format}, nil

}

// decoderFor picks a decoder from the data's signature. image.Decode can't be used for this: the tga package
// registers itself without a magic string, so it would claim every file.
func decoderFor(data []byte) (string, func(io.Reader) (image.Image, error), error) {

	kind, err := filetype.Match(data)
	if err != nil {
		return "", nil, err
	}

	switch kind.Extension {
	case "png":
		return "png", png.Decode, nil
	case "jpg":
		return "jpeg", jpeg.Decode, nil
	case "webp":
		return "webp", webp.Decode, nil
	}

	// TGA has no signature, so it's the fallback for anything unrecognized.
	if kind == filetype.Unknown {
		return "tga", tga.Decode, nil
	}

	if filetype.IsImage(data) {
		return "", nil, fmt.Errorf("unsupported image format %s", kind.MIME.Value)
	}

	return "", nil, fmt.Errorf("a %s file is not an image", kind.MIME.Value)

}

func fit(img image.Image, maxSize int) image.Image {

	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	if w <= maxSize && h <= maxSize {
		return img
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}

	return transform.Resize(img, w, h, transform.Linear)

}

// LoadTexture loads and decodes an image in the background.
func (loader *Loader) LoadTexture(name string, cb Callbacks[*Texture]) error {
	maxSize := loader.MaxTextureSize
	return load(loader, "texture", name, cb, func(data []byte) (*Texture, error) {
		return DecodeTexture(name, data, maxSize)
	})
}
