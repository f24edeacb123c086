package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/rook-computer/socialcard/internal/render/layout"
)

// ErrPixelAccess is returned when the effects pass cannot read or write the
// canvas pixels. The render continues without effects.
var ErrPixelAccess = errors.New("pixel buffer not accessible")

// Luminance weights (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Effects is the grayscale + grain post-process. Grayscale and Grain are
// percentages; Rand supplies the grain noise and may be seeded for
// reproducible output.
type Effects struct {
	Grayscale float64
	Grain     float64
	Rand      *rand.Rand
}

// Enabled reports whether Apply would touch any pixel.
func (e Effects) Enabled() bool {
	return e.Grayscale > 0 || e.Grain > 0
}

// Apply runs the effects over region of img in place. The region is clamped
// to the image bounds; an empty region is a no-op. Alpha is never changed.
//
// The canvas is opaque once the background is filled, so the premultiplied
// RGBA bytes equal the straight colour values the formulas expect.
func (e Effects) Apply(img *image.RGBA, region image.Rectangle) (err error) {
	if img == nil {
		return fmt.Errorf("%w: nil canvas", ErrPixelAccess)
	}
	region = layout.Clamp(region, img.Bounds())
	if region.Empty() || !e.Enabled() {
		return nil
	}
	if last := img.PixOffset(region.Max.X-1, region.Max.Y-1) + 3; last >= len(img.Pix) {
		return fmt.Errorf("%w: buffer holds %d bytes, region needs %d", ErrPixelAccess, len(img.Pix), last+1)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPixelAccess, r)
		}
	}()

	gray := math.Min(e.Grayscale, 100) / 100
	grain := e.Grain / 100
	rng := e.Rand
	if rng == nil && grain > 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	pix := img.Pix
	for y := region.Min.Y; y < region.Max.Y; y++ {
		i := img.PixOffset(region.Min.X, y)
		for x := region.Min.X; x < region.Max.X; x, i = x+1, i+4 {
			r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])

			if gray > 0 {
				l := lumaR*r + lumaG*g + lumaB*b
				r = quantize(r + (l-r)*gray)
				g = quantize(g + (l-g)*gray)
				b = quantize(b + (l-b)*gray)
			}

			if grain > 0 {
				delta := (rng.Float64() - 0.5) * grain * 100
				r = quantize(r + delta)
				g = quantize(g + delta)
				b = quantize(b + delta)
			}

			pix[i] = uint8(r)
			pix[i+1] = uint8(g)
			pix[i+2] = uint8(b)
		}
	}
	return nil
}

// quantize clamps v to [0,255] and rounds it the way a clamped byte array
// stores it (half to even).
func quantize(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return math.RoundToEven(v)
}
