package render

import "image/color"

// Global render configuration for colors and text placement.
var (
	// Background fills the canvas before the image is drawn (#2a2a2a).
	Background = color.RGBA{R: 0x2a, G: 0x2a, B: 0x2a, A: 0xff}

	// DefaultTextColor is used when the configured colour does not parse.
	DefaultTextColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const (
	// TextMargin is the left and bottom inset of the text blocks.
	TextMargin = 40
	// LineHeight is the baseline step as a multiple of the font size.
	LineHeight = 1.2
	// BlockGap separates the body block from the title block.
	BlockGap = 10
)
