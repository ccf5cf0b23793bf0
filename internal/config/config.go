// Package config holds the settings of the donutfield demo. Settings start from Default, can be overridden by a
// TOML file, and finally by command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/solarlune/donutfield/internal/engine"
)

// Config is the complete set of settings.
type Config struct {
	Assets Assets `toml:"assets"`
	Scene  Scene  `toml:"scene"`
	Window Window `toml:"window"`
	Log    Log    `toml:"log"`
}

// Assets says where textures and fonts are read from.
type Assets struct {
	Root           string `toml:"root"`
	Texture        string `toml:"texture"`
	Font           string `toml:"font"` // Empty means the built-in Go Regular font.
	MaxTextureSize int    `toml:"max_texture_size"`
	Watch          bool   `toml:"watch"` // Reload the texture when it changes on disk.
}

// Scene controls what gets built once the assets are loaded.
type Scene struct {
	Text       string `toml:"text"`
	TorusCount int    `toml:"torus_count"`
	Seed       uint64 `toml:"seed"` // 0 picks a seed from the clock.
	ClearColor string `toml:"clear_color"`
}

type Window struct {
	Title            string  `toml:"title"`
	Width            int     `toml:"width"`
	Height           int     `toml:"height"`
	Fullscreen       bool    `toml:"fullscreen"`
	MaxPixelRatio    float64 `toml:"max_pixel_ratio"`
	ScreenshotFormat string  `toml:"screenshot_format"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "auto", "text" or "json".
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Assets: Assets{
			Root:    "assets",
			Texture: "/textures/matcaps/8.png",
		},
		Scene: Scene{
			Text:       "Ebitengine is Cool",
			TorusCount: 160,
			ClearColor: "#000000",
		},
		Window: Window{
			Title:            "donutfield",
			Width:            1280,
			Height:           720,
			MaxPixelRatio:    2,
			ScreenshotFormat: "png",
		},
		Log: Log{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads a TOML file on top of the defaults. Keys that don't map to a setting are an error, so typos don't go
// unnoticed.
func Load(path string) (Config, error) {

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil

}

// Decode parses TOML data into cfg, leaving settings the data doesn't mention untouched.
func Decode(data []byte, cfg *Config) error {

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.New(strict.String())
		}
		return err
	}

	return cfg.Validate()

}

// Encode writes cfg as TOML.
func (cfg Config) Encode() ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate reports the first setting that can't be used.
func (cfg Config) Validate() error {

	switch {
	case cfg.Assets.Texture == "":
		return errors.New("assets.texture must be set")
	case cfg.Assets.MaxTextureSize < 0:
		return fmt.Errorf("assets.max_texture_size must not be negative, got %d", cfg.Assets.MaxTextureSize)
	case cfg.Scene.TorusCount < 0:
		return fmt.Errorf("scene.torus_count must not be negative, got %d", cfg.Scene.TorusCount)
	case cfg.Window.Width <= 0 || cfg.Window.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	case cfg.Window.MaxPixelRatio <= 0 || cfg.Window.MaxPixelRatio > 2:
		return fmt.Errorf("window.max_pixel_ratio must be above 0 and at most 2, got %v", cfg.Window.MaxPixelRatio)
	}

	switch strings.ToLower(cfg.Window.ScreenshotFormat) {
	case "png", "webp":
	default:
		return fmt.Errorf("window.screenshot_format must be png or webp, got %q", cfg.Window.ScreenshotFormat)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json, got %q", cfg.Log.Format)
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return err
	}

	if _, err := cfg.ClearColor(); err != nil {
		return err
	}

	return nil

}

// SlogLevel parses Log.Level ("debug", "info", "warn", "error", optionally with an offset like "info+2").
func (cfg Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ClearColor parses Scene.ClearColor, a hex color like "#1e1e2e". An empty string is black.
func (cfg Config) ClearColor() (engine.Color, error) {

	if cfg.Scene.ClearColor == "" {
		return engine.NewColor(0, 0, 0, 1), nil
	}

	c, err := colorful.Hex(cfg.Scene.ClearColor)
	if err != nil {
		return engine.Color{}, fmt.Errorf("scene.clear_color: %w", err)
	}

	return engine.NewColor(float32(c.R), float32(c.G), float32(c.B), 1), nil

}
