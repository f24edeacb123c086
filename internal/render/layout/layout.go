package layout

import (
	"image"
	"math"
)

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Clamp restricts rect to bounds. The result is empty when they do not overlap.
func Clamp(rect, bounds image.Rectangle) image.Rectangle {
	out := rect
	if out.Min.X < bounds.Min.X {
		out.Min.X = bounds.Min.X
	}
	if out.Min.Y < bounds.Min.Y {
		out.Min.Y = bounds.Min.Y
	}
	if out.Max.X > bounds.Max.X {
		out.Max.X = bounds.Max.X
	}
	if out.Max.Y > bounds.Max.Y {
		out.Max.Y = bounds.Max.Y
	}
	if out.Dx() <= 0 || out.Dy() <= 0 {
		return image.Rectangle{}
	}
	return out
}

// PointF is a point in canvas space with sub-pixel precision.
type PointF struct {
	X, Y float64
}

// Enclosing returns the smallest integer rectangle that contains all points.
// Min is floored and Max is ceiled, so partially covered pixels are included.
func Enclosing(points ...PointF) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}
