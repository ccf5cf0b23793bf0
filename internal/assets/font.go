package assets

import (
	"fmt"

	"github.com/h2non/filetype"
	"github.com/solarlune/donutfield/internal/typeface"
)

// DecodeFont parses typeface JSON, TrueType or OpenType data. Web font containers are recognized but not
// supported.
func DecodeFont(name string, data []byte) (typeface.Font, error) {

	if kind, err := filetype.Match(data); err == nil {
		switch kind.Extension {
		case "woff", "woff2", "eot":
			return nil, fmt.Errorf("%s: %s fonts: %w", name, kind.Extension, typeface.ErrUnknownFormat)
		}
	}

	font, err := typeface.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return font, nil

}

// LoadFont loads and parses a font in the background. An empty name loads the built-in Go Regular font.
func (loader *Loader) LoadFont(name string, cb Callbacks[typeface.Font]) error {

	if name == "" {
		return loader.loadBuiltinFont(cb)
	}

	return load(loader, "font", name, cb, func(data []byte) (typeface.Font, error) {
		return DecodeFont(name, data)
	})

}

// loadBuiltinFont goes through the same queue as file loads, so callers see identical timing either way.
func (loader *Loader) loadBuiltinFont(cb Callbacks[typeface.Font]) error {

	loader.mu.Lock()
	if loader.closed {
		loader.mu.Unlock()
		return ErrClosed
	}
	loader.pending++
	loader.mu.Unlock()

	loader.logger.Debug("loading", "kind", "font", "path", "<builtin>")

	loader.group.Go(func() error {
		font := typeface.Default()
		loader.enqueue(func() {
			loader.mu.Lock()
			loader.pending--
			loader.mu.Unlock()
			if cb.OnLoad != nil {
				cb.OnLoad(font)
			}
		})
		return nil
	})

	return nil

}
