package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Canvas is the pixel surface a render draws into. Only explicit resizes
// change its dimensions.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Resize replaces the pixel buffer with a fresh one of the new size, so no
// pixels from the previous size survive.
func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width int, height int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Image exposes the live pixel buffer.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clear makes every pixel transparent black.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}
