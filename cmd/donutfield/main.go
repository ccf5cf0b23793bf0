package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mattn/go-isatty"
	"github.com/solarlune/donutfield/internal/app"
	"github.com/solarlune/donutfield/internal/assets"
	"github.com/solarlune/donutfield/internal/config"
	"github.com/solarlune/donutfield/internal/events"
	"github.com/solarlune/donutfield/internal/geometry"
	"github.com/solarlune/donutfield/internal/platform"
	"github.com/solarlune/donutfield/internal/render"
	"github.com/solarlune/donutfield/internal/typeface"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath string

	assetsRoot       string
	texture          string
	font             string
	text             string
	count            int
	seed             uint64
	watch            bool
	fullscreen       bool
	logLevel         string
	logFormat        string
	screenshotFormat string
	maxTextureSize   int
}

func main() {

	f := &flags{}

	cmd := &cobra.Command{
		Use:   "donutfield",
		Short: "Matcap-shaded 3D text in a field of tori",
		Long: `donutfield - 3D text floating in a field of tori

Controls:
  Left drag     - Orbit
  Scroll        - Zoom
  Double-click  - Toggle fullscreen
  F1            - Toggle debug text
  F4            - Toggle fullscreen
  F5            - Toggle depth view
  F12           - Save a screenshot
  Esc           - Quit`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	f.register(cmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Display scene information",
		Long:  "Build the scene's meshes without opening a window and print their vertex and triangle counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			return runInfo(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.AddCommand(infoCmd)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}

}

func (f *flags) register(cmd *cobra.Command) {

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML file to read settings from")
	pf.StringVar(&f.assetsRoot, "assets", "", "Directory the texture and font are read from")
	pf.StringVar(&f.texture, "texture", "", "Matcap texture, relative to the assets directory")
	pf.StringVar(&f.font, "font", "", "Font (TTF, OTF or typeface JSON), relative to the assets directory")
	pf.StringVar(&f.text, "text", "", "Text to show in the middle of the field")
	pf.IntVar(&f.count, "count", 0, "Number of tori")
	pf.Uint64Var(&f.seed, "seed", 0, "Seed for the torus placement; 0 picks one from the clock")
	pf.IntVar(&f.maxTextureSize, "max-texture-size", 0, "Scale textures down to fit this size; 0 keeps them as they are")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format (auto, text, json)")

	cmd.Flags().BoolVar(&f.watch, "watch", false, "Reload the texture when it changes on disk")
	cmd.Flags().BoolVar(&f.fullscreen, "fullscreen", false, "Start in fullscreen")
	cmd.Flags().StringVar(&f.screenshotFormat, "screenshot-format", "", "Screenshot format (png, webp)")

}

// config reads the settings file, if any, and applies the flags that were set on top of it.
func (f *flags) config(cmd *cobra.Command) (config.Config, error) {

	cfg := config.Default()

	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed

	if changed("assets") {
		cfg.Assets.Root = f.assetsRoot
	}
	if changed("texture") {
		cfg.Assets.Texture = f.texture
	}
	if changed("font") {
		cfg.Assets.Font = f.font
	}
	if changed("max-texture-size") {
		cfg.Assets.MaxTextureSize = f.maxTextureSize
	}
	if changed("watch") {
		cfg.Assets.Watch = f.watch
	}
	if changed("text") {
		cfg.Scene.Text = f.text
	}
	if changed("count") {
		cfg.Scene.TorusCount = f.count
	}
	if changed("seed") {
		cfg.Scene.Seed = f.seed
	}
	if changed("fullscreen") {
		cfg.Window.Fullscreen = f.fullscreen
	}
	if changed("screenshot-format") {
		cfg.Window.ScreenshotFormat = f.screenshotFormat
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil

}

// newLogger logs to w as text when w is a terminal and as JSON otherwise, unless the format says which.
func newLogger(w *os.File, cfg config.Config) *slog.Logger {

	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	format := strings.ToLower(cfg.Log.Format)
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
			format = "text"
		}
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))

}

func run(cfg config.Config) error {

	logger := newLogger(os.Stderr, cfg)

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	bus := events.NewBus()
	display := platform.Display{}

	view := app.NewView(app.Options{
		Config:  cfg,
		Assets:  os.DirFS(cfg.Assets.Root),
		Display: display,
		Bus:     bus,
		Logger:  logger,
		NewRenderer: func(w, h int) (app.Renderer, error) {
			r, err := render.NewRenderer(w, h)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		WatchRoot: cfg.Assets.Root,
	})

	if err := view.Mount(); err != nil {
		return fmt.Errorf("mounting view: %w", err)
	}
	defer view.Unmount()

	game := platform.NewGame(view, bus, display, logger)
	game.ScreenshotFormat = cfg.Window.ScreenshotFormat
	defer game.Overlay.Dispose()

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}

	return nil

}

// runInfo builds the text and torus meshes the same way the view does and prints what they're made of.
func runInfo(w io.Writer, cfg config.Config) error {

	loader := assets.NewLoader(os.DirFS(cfg.Assets.Root), nil)
	defer loader.Close()

	var font typeface.Font
	var loadErr error

	if err := loader.LoadFont(cfg.Assets.Font, assets.Callbacks[typeface.Font]{
		OnLoad:  func(f typeface.Font) { font = f },
		OnError: func(err error) { loadErr = err },
	}); err != nil {
		return err
	}

	loader.Wait()
	loader.Dispatch()

	if loadErr != nil {
		return loadErr
	}

	fontName := cfg.Assets.Font
	if fontName == "" {
		fontName = "(built-in)"
	}

	fmt.Fprintf(w, "Font:       %s (%s)\n", font.Name(), fontName)
	fmt.Fprintf(w, "Text:       %q\n", cfg.Scene.Text)

	if cfg.Scene.Text != "" {
		text, err := geometry.NewText(font, cfg.Scene.Text, app.TextOptions())
		if err != nil {
			fmt.Fprintf(w, "Warning:    %v\n", err)
		}
		if text != nil {
			dim := text.Dimensions
			fmt.Fprintf(w, "  Vertices: %d\n", text.VertexCount())
			fmt.Fprintf(w, "  Tris:     %d\n", text.TriangleCount())
			fmt.Fprintf(w, "  Size:     %.3f x %.3f x %.3f\n", dim.Width(), dim.Height(), dim.Depth())
		}
	}

	torus := app.NewTorusMesh()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tori:       %d (sharing one mesh)\n", cfg.Scene.TorusCount)
	fmt.Fprintf(w, "  Vertices: %d\n", torus.VertexCount())
	fmt.Fprintf(w, "  Tris:     %d each, %d total\n", torus.TriangleCount(), torus.TriangleCount()*cfg.Scene.TorusCount)

	return nil

}
