package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rook-computer/socialcard/internal/imagesource"
	"github.com/rook-computer/socialcard/internal/render"
	"github.com/rook-computer/socialcard/internal/settings"
	"github.com/rook-computer/socialcard/internal/watch"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	settingsPath string // settings JSON, merged over the defaults
	imagePath    string // photo to place on the canvas
	output       string // PNG path; empty uses the export file name
	preset       string // canvas preset override
	width        string // custom width, as typed; bad values fall back
	height       string // custom height, as typed; bad values fall back
	watch        bool   // re-render whenever an input changes
	seed         uint64 // grain noise seed
	seeded       bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a settings document and an image to PNG",
		Long: `Render composes the canvas exactly as the editor does and writes it as PNG.
Without --settings the default settings are used; without --image only the
background and text are drawn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seeded = cmd.Flags().Changed("seed")
			if !opts.seeded {
				if cfg := configFromContext(cmd.Context()); cfg.Seed != nil {
					opts.seed, opts.seeded = *cfg.Seed, true
				}
			}
			if opts.output == "" {
				opts.output = render.ExportFilename(time.Now())
			}
			return runRender(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.settingsPath, "settings", "s", "", "settings JSON file")
	cmd.Flags().StringVarP(&opts.imagePath, "image", "i", "", "image file (png, jpeg, gif, webp)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output PNG path (default: social-media-image-<timestamp>.png)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "canvas preset, overriding the settings file")
	cmd.Flags().StringVar(&opts.width, "width", "", "custom canvas width (used with --preset custom)")
	cmd.Flags().StringVar(&opts.height, "height", "", "custom canvas height (used with --preset custom)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the settings or image file changes")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "grain noise seed")

	return cmd
}

func runRender(ctx context.Context, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	if err := renderFile(ctx, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	var paths []string
	for _, p := range []string{opts.settingsPath, opts.imagePath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return errors.New("--watch needs --settings or --image")
	}
	w, err := watch.New(paths...)
	if err != nil {
		return err
	}
	w.Logger = componentLogger(ctx)
	logger.Info("Watching for changes", "files", paths)
	return w.Run(ctx, func(ctx context.Context) error {
		return renderFile(ctx, opts)
	})
}

// renderFile renders once and writes opts.output.
func renderFile(ctx context.Context, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := loadSettings(opts.settingsPath)
	if err != nil {
		return err
	}
	if s, err = applySizeFlags(s, opts); err != nil {
		return err
	}
	var src image.Image
	if opts.imagePath != "" {
		img, err := loadImage(opts.imagePath)
		if err != nil {
			return err
		}
		logger.Debug("Loaded image", "path", opts.imagePath, "width", img.Width, "height", img.Height, "format", img.Format)
		src = img.Image
	}

	var rng *rand.Rand
	if opts.seeded {
		rng = newRand(opts.seed)
	}
	renderer := render.NewRenderer(nil, rng)
	renderer.Logger = componentLogger(ctx)

	size := s.CanvasDimensions()
	canvas := render.NewCanvas(size.Width, size.Height)
	if err := renderer.Render(canvas, s, src); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := writePNG(opts.output, canvas.Image()); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s %dx%d", opts.output, size.Width, size.Height))
	return nil
}

func loadSettings(path string) (settings.Settings, error) {
	s := settings.Defaults()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	s, err = settings.Merge(s, data)
	if err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if !s.CanvasSize.Valid() {
		return s, fmt.Errorf("settings %s: unknown canvas preset %q", path, s.CanvasSize)
	}
	return s, nil
}

// applySizeFlags layers --preset, --width and --height over s.
func applySizeFlags(s settings.Settings, opts renderOpts) (settings.Settings, error) {
	if opts.preset != "" {
		p := settings.Preset(opts.preset)
		if !p.Valid() {
			return s, fmt.Errorf("unknown canvas preset %q", opts.preset)
		}
		s = s.Apply(settings.WithPreset(p))
	}
	width, height := s.CustomWidth, s.CustomHeight
	if opts.width != "" {
		width = settings.ParseDimension(opts.width, settings.DefaultCustomWidth)
	}
	if opts.height != "" {
		height = settings.ParseDimension(opts.height, settings.DefaultCustomHeight)
	}
	return s.Apply(settings.WithCustomSize(width, height)), nil
}

func loadImage(path string) (*imagesource.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, err := imagesource.Decode(bytes.NewReader(data), http.DetectContentType(data))
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}
	return img, nil
}

// writePNG writes through a temp file so a watcher never sees a partial PNG.
func writePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := render.EncodePNG(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
