package render

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/rook-computer/socialcard/internal/render/layout"
)

// Matrix is a 2x3 affine transform in row-major order:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Matrix f64.Aff3

// Identity is the transform that leaves points unchanged.
var Identity = Matrix{1, 0, 0, 0, 1, 0}

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, tx, 0, 1, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, 0, sy, 0} }

// Shear follows the canvas convention transform(1, ky, kx, 1, 0, 0):
// x' = x + kx*y and y' = ky*x + y.
func Shear(kx, ky float64) Matrix { return Matrix{1, kx, 0, ky, 1, 0} }

// Mul returns m·n, the transform that applies n first and then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Apply maps a point through m.
func (m Matrix) Apply(p layout.PointF) layout.PointF {
	return layout.PointF{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// BoundingBox maps the four corners of r through m and returns the integer
// rectangle enclosing them.
func (m Matrix) BoundingBox(r RectF) image.Rectangle {
	return layout.Enclosing(
		m.Apply(layout.PointF{X: r.X, Y: r.Y}),
		m.Apply(layout.PointF{X: r.X + r.Width, Y: r.Y}),
		m.Apply(layout.PointF{X: r.X, Y: r.Y + r.Height}),
		m.Apply(layout.PointF{X: r.X + r.Width, Y: r.Y + r.Height}),
	)
}

// Finite reports whether every coefficient of m is a finite number.
func (m Matrix) Finite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Aff3 converts m for use with golang.org/x/image/draw.
func (m Matrix) Aff3() f64.Aff3 { return f64.Aff3(m) }

// RectF is an axis-aligned rectangle with sub-pixel position and size.
type RectF struct {
	X, Y, Width, Height float64
}

// Placement is where the source image lands on the canvas before skewing.
type Placement struct {
	Scale float64
	RectF
}

// ComputePlacement cover-fits an imageW x imageH image onto the canvas, applies
// zoom (percent) and then pans by (panX, panY) canvas pixels.
// imageW and imageH must be positive; callers reject empty images first.
func ComputePlacement(canvasW, canvasH, imageW, imageH int, zoom, panX, panY float64) Placement {
	cw, ch := float64(canvasW), float64(canvasH)
	iw, ih := float64(imageW), float64(imageH)

	scale := math.Max(cw/iw, ch/ih) * (zoom / 100)
	drawW := iw * scale
	drawH := ih * scale
	return Placement{
		Scale: scale,
		RectF: RectF{
			X:      (cw-drawW)/2 + panX,
			Y:      (ch-drawH)/2 + panY,
			Width:  drawW,
			Height: drawH,
		},
	}
}

// SkewMatrix shears around the canvas centre so the image's apparent centre
// does not move. Angles are in degrees.
func SkewMatrix(canvasW, canvasH int, skewXDeg, skewYDeg float64) Matrix {
	cx, cy := float64(canvasW)/2, float64(canvasH)/2
	kx := math.Tan(skewXDeg * math.Pi / 180)
	ky := math.Tan(skewYDeg * math.Pi / 180)
	return Translate(cx, cy).Mul(Shear(kx, ky)).Mul(Translate(-cx, -cy))
}

// ImageMatrix maps source pixel coordinates (within srcBounds) to canvas
// coordinates: place and scale the image, then apply view.
func (p Placement) ImageMatrix(view Matrix, srcBounds image.Rectangle) Matrix {
	return view.
		Mul(Translate(p.X, p.Y)).
		Mul(Scale(p.Scale, p.Scale)).
		Mul(Translate(-float64(srcBounds.Min.X), -float64(srcBounds.Min.Y)))
}
