package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rook-computer/socialcard/internal/settings"
)

var testImageColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// plain returns settings without skew, effects or text.
func plain() settings.Settings {
	s := settings.Defaults()
	s.SkewX, s.SkewY = 0, 0
	s.Grayscale = 0
	s.TitleText, s.BodyText = "", ""
	return s
}

type warnCounter struct{ warnings int }

func (w *warnCounter) Infof(string, string, ...interface{})  {}
func (w *warnCounter) Errorf(string, string, ...interface{}) {}
func (w *warnCounter) Warnf(string, string, ...interface{})  { w.warnings++ }

func newTestRenderer() *Renderer {
	return NewRenderer(NewFontSet(), rand.New(rand.NewPCG(1, 2)))
}

func countPixels(img *image.RGBA, match func(color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if match(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestRenderImageCoversCanvas(t *testing.T) {
	canvas := NewCanvas(1200, 630)
	if err := newTestRenderer().Render(canvas, plain(), uniform(2400, 1260, testImageColor)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c == Background }); n != 0 {
		t.Errorf("%d background pixels visible, want 0", n)
	}
	if got := canvas.Image().RGBAAt(600, 315); got != testImageColor {
		t.Errorf("centre = %v, want %v", got, testImageColor)
	}
}

func TestRenderWithoutImageOrText(t *testing.T) {
	canvas := NewCanvas(1500, 500)
	// Leftover pixels from a previous frame must be cleared.
	draw.Draw(canvas.Image(), canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if err := newTestRenderer().Render(canvas, plain(), nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c != Background }); n != 0 {
		t.Errorf("%d non-background pixels, want 0", n)
	}
}

func TestRenderTextIgnoresImageOpacity(t *testing.T) {
	s := plain()
	s.Opacity = 0
	s.TitleText = "Hello"
	s.TextColor = "#ffffff"

	canvas := NewCanvas(1200, 630)
	if err := newTestRenderer().Render(canvas, s, uniform(100, 100, testImageColor)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c == white }); n == 0 {
		t.Error("no fully white title pixels drawn")
	}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c == testImageColor }); n != 0 {
		t.Errorf("%d image pixels visible at opacity 0", n)
	}
}

func TestRenderTextIgnoresSkewAndEffects(t *testing.T) {
	s := plain()
	s.TitleText = "Hello"
	s.Grayscale = 100
	s.SkewX, s.SkewY = 20, 20
	s.TextColor = "#ff0000"

	canvas := NewCanvas(1200, 630)
	if err := newTestRenderer().Render(canvas, s, uniform(300, 300, color.RGBA{B: 255, A: 255})); err != nil {
		t.Fatalf("Render: %v", err)
	}
	red := color.RGBA{R: 255, A: 255}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c == red }); n == 0 {
		t.Error("title lost its colour: effects leaked into the text pass")
	}
}

func TestRenderOpacityBlendsWithBackground(t *testing.T) {
	s := plain()
	s.Opacity = 50

	canvas := NewCanvas(1200, 630)
	if err := newTestRenderer().Render(canvas, s, uniform(1200, 630, testImageColor)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := canvas.Image().RGBAAt(600, 315)
	// 200*0.5 + 42*0.5
	if got.R < 119 || got.R > 123 || got.A != 255 {
		t.Errorf("blended pixel = %v, want R ~121 and opaque", got)
	}
}

func TestRenderSkewKeepsCentre(t *testing.T) {
	s := plain()
	s.SkewX, s.SkewY = 5, 5.5

	canvas := NewCanvas(1200, 630)
	if err := newTestRenderer().Render(canvas, s, uniform(1200, 630, testImageColor)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := canvas.Image().RGBAAt(600, 315); got != testImageColor {
		t.Errorf("centre = %v, want %v", got, testImageColor)
	}
	// The shear pulls the top-right corner inward.
	if got := canvas.Image().RGBAAt(1199, 0); got != Background {
		t.Errorf("top-right = %v, want background", got)
	}
}

func TestRenderGrayscaleOnlyInsideImage(t *testing.T) {
	s := plain()
	s.Grayscale = 100
	s.Zoom = 50

	canvas := NewCanvas(1200, 630)
	if err := newTestRenderer().Render(canvas, s, uniform(1200, 630, testImageColor)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	c := canvas.Image().RGBAAt(600, 315)
	if c.R != c.G || c.G != c.B {
		t.Errorf("image centre not gray: %v", c)
	}
	if got := canvas.Image().RGBAAt(5, 5); got != Background {
		t.Errorf("corner outside image = %v, want background", got)
	}
}

func TestRenderEmptySource(t *testing.T) {
	canvas := NewCanvas(100, 100)
	err := newTestRenderer().Render(canvas, plain(), image.NewRGBA(image.Rectangle{}))
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("err = %v, want ErrEmptyImage", err)
	}
	if err := newTestRenderer().Render(nil, plain(), nil); !errors.Is(err, ErrNilCanvas) {
		t.Errorf("nil canvas err = %v, want ErrNilCanvas", err)
	}
}

func TestRenderInvalidTextColorFallsBackToWhite(t *testing.T) {
	s := plain()
	s.TitleText = "Hi"
	s.TextColor = "not-a-colour"

	logger := &warnCounter{}
	r := newTestRenderer()
	r.Logger = logger
	canvas := NewCanvas(400, 200)
	if err := r.Render(canvas, s, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if logger.warnings == 0 {
		t.Error("expected a warning for the invalid colour")
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c == white }); n == 0 {
		t.Error("fallback colour not used")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"#2a2a2a", color.RGBA{42, 42, 42, 255}, false},
		{"ff8000", color.RGBA{255, 128, 0, 255}, false},
		{"#f00", color.RGBA{255, 0, 0, 255}, false},
		{"#zzzzzz", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanvasResizeDropsPixels(t *testing.T) {
	canvas := NewCanvas(1200, 630)
	canvas.Fill(color.White)
	canvas.Resize(1500, 500)
	if w, h := canvas.Size(); w != 1500 || h != 500 {
		t.Fatalf("size = %dx%d, want 1500x500", w, h)
	}
	if n := countPixels(canvas.Image(), func(c color.RGBA) bool { return c != (color.RGBA{}) }); n != 0 {
		t.Errorf("%d pixels survived the resize", n)
	}
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 15, 2, 123_000_000, time.UTC)
	if got, want := ExportFilename(ts), "social-media-image-2026-10-19T08-15-02-123Z.png"; got != want {
		t.Errorf("ExportFilename = %q, want %q", got, want)
	}
	local := ts.In(time.FixedZone("CEST", 2*3600))
	if got := ExportFilename(local); got != ExportFilename(ts) {
		t.Errorf("ExportFilename is not in UTC: %q", got)
	}
}

func TestPNGBytesRoundTrip(t *testing.T) {
	canvas := NewCanvas(8, 4)
	canvas.Fill(Background)
	data, err := PNGBytes(canvas.Image())
	if err != nil {
		t.Fatalf("PNGBytes: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("decoded bounds = %v", b)
	}
}

func TestQRCode(t *testing.T) {
	img, err := QRCode("http://localhost:8080/", 0)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("bounds = %v, want 256x256", b)
	}
	if _, err := QRCode("", 100); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("empty payload err = %v", err)
	}
}

func TestRenderRightAngleSkewIsClamped(t *testing.T) {
	tests := []struct {
		name         string
		skewX, skewY float64
	}{
		{"x 90", 90, 0},
		{"x -90", -90, 0},
		{"y 90", 0, 90},
		{"both 90", 90, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := plain()
			s.SkewX, s.SkewY = tt.skewX, tt.skewY

			canvas := NewCanvas(120, 63)
			if err := newTestRenderer().Render(canvas, s, uniform(200, 100, testImageColor)); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := canvas.Image().RGBAAt(60, 31); got != testImageColor {
				t.Errorf("centre = %v, want %v", got, testImageColor)
			}
		})
	}
}
