package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/socialcard/internal/render/layout"
	"github.com/rook-computer/socialcard/internal/settings"
)

var (
	ErrNilCanvas  = errors.New("render: nil canvas")
	ErrEmptyImage = errors.New("render: source image has no pixels")
)

// Logger is the logging shape shared with the rest of the application.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Warnf(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Sink receives every finished frame, e.g. a framebuffer preview.
type Sink interface {
	Start(ctx context.Context) error
	Stop() error
	Present(frame *image.RGBA) error
}

type NoopSink struct{}

func (NoopSink) Start(ctx context.Context) error { return nil }
func (NoopSink) Stop() error                     { return nil }
func (NoopSink) Present(frame *image.RGBA) error { return nil }

// Renderer composes background, image, effects and text onto a canvas.
// It keeps a scratch layer between calls and is not safe for concurrent use.
type Renderer struct {
	Fonts        FontSource
	Rand         *rand.Rand
	Interpolator xdraw.Interpolator
	Logger       Logger

	layer *image.RGBA
}

// NewRenderer builds a renderer. A nil rng seeds grain noise randomly.
func NewRenderer(fonts FontSource, rng *rand.Rand) *Renderer {
	if fonts == nil {
		fonts = NewFontSet()
	}
	return &Renderer{Fonts: fonts, Rand: rng, Interpolator: xdraw.BiLinear}
}

// Render draws one frame for s. Settings are read, never modified; src may
// be nil. The canvas always ends up showing at least the background and the
// text, even when the effects pass fails.
func (r *Renderer) Render(canvas *Canvas, s settings.Settings, src image.Image) error {
	if canvas == nil {
		return ErrNilCanvas
	}
	s = s.Normalize()

	canvas.Clear()
	canvas.Fill(Background)

	if src != nil {
		if err := r.drawImage(canvas, s, src); err != nil {
			return err
		}
	}
	r.drawText(canvas, s)
	return nil
}

// drawImage applies placement, skew and opacity to this draw only: the
// transform goes into a scratch layer that is composited with an opacity
// mask, so nothing leaks into the text pass.
func (r *Renderer) drawImage(canvas *Canvas, s settings.Settings, src image.Image) error {
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return ErrEmptyImage
	}
	cw, ch := canvas.Size()
	bounds := canvas.Bounds()

	placement := ComputePlacement(cw, ch, sb.Dx(), sb.Dy(), s.Zoom, s.ImageX, s.ImageY)
	view := SkewMatrix(cw, ch, s.SkewX, s.SkewY)
	m := placement.ImageMatrix(view, sb)
	if !m.Finite() {
		r.warnf("render", "skipping image: transform is not finite (skew %v/%v, zoom %v)", s.SkewX, s.SkewY, s.Zoom)
		return nil
	}
	region := layout.Clamp(view.BoundingBox(placement.RectF), bounds)
	if region.Empty() {
		return nil
	}

	layer := r.scratch(bounds)
	r.interpolator().Transform(layer, m.Aff3(), src, sb, xdraw.Over, nil)

	alpha := uint8(math.Round(s.Opacity / 100 * 255))
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(canvas.Image(), region, layer, region.Min, mask, image.Point{}, draw.Over)

	effects := Effects{Grayscale: s.Grayscale, Grain: s.Grain, Rand: r.Rand}
	if effects.Enabled() {
		if err := effects.Apply(canvas.Image(), region); err != nil {
			r.warnf("render", "could not apply image effects: %v", err)
		}
	}
	return nil
}

func (r *Renderer) scratch(bounds image.Rectangle) *image.RGBA {
	if r.layer == nil || r.layer.Bounds() != bounds {
		r.layer = image.NewRGBA(bounds)
		return r.layer
	}
	clear(r.layer.Pix)
	return r.layer
}

func (r *Renderer) interpolator() xdraw.Interpolator {
	if r.Interpolator == nil {
		return xdraw.BiLinear
	}
	return r.Interpolator
}

// drawText renders body then title at full opacity and without transform.
func (r *Renderer) drawText(canvas *Canvas, s settings.Settings) {
	lines := r.Layout(canvas, s)
	if len(lines) == 0 {
		return
	}
	src := image.NewUniform(r.textColor(s.TextColor))
	for _, line := range lines {
		face := r.Fonts.Face(float64(line.Size), line.Weight)
		descent := float64(face.Metrics().Descent) / 64
		drawer := &font.Drawer{
			Dst:  canvas.Image(),
			Src:  src,
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.Int26_6(math.Round(line.X * 64)),
				Y: fixed.Int26_6(math.Round((line.Y - descent) * 64)),
			},
		}
		drawer.DrawString(line.Text)
	}
}

// Layout returns the text lines a render of s on canvas would draw.
func (r *Renderer) Layout(canvas *Canvas, s settings.Settings) []TextLine {
	cw, ch := canvas.Size()
	return LayoutText(cw, ch,
		TextBlock{Text: s.TitleText, Size: s.TitleSize},
		TextBlock{Text: s.BodyText, Size: s.BodySize},
		r.Fonts,
	)
}

func (r *Renderer) textColor(hex string) color.Color {
	c, err := ParseHexColor(hex)
	if err != nil {
		r.warnf("render", "invalid text color %q, using white: %v", hex, err)
		return DefaultTextColor
	}
	return c
}

// ParseHexColor parses #rgb or #rrggbb (the leading # is optional).
func ParseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color: %w", err)
	}
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 0xff}, nil
}

func (r *Renderer) warnf(component, format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Warnf(component, format, args...)
	}
}
