package render

import (
	"image"
	"strings"

	"golang.org/x/image/font"

	"github.com/rook-computer/socialcard/internal/render/layout"
)

// Measurer reports the advance width of a string in pixels.
type Measurer interface {
	Measure(s string) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(s string) float64

func (f MeasureFunc) Measure(s string) float64 { return f(s) }

type faceMeasurer struct{ face font.Face }

func (m faceMeasurer) Measure(s string) float64 {
	return float64(font.MeasureString(m.face, s)) / 64
}

// FaceMeasurer measures with a font face.
func FaceMeasurer(face font.Face) Measurer { return faceMeasurer{face: face} }

// Wrap greedily breaks text into lines no wider than maxWidth. Words are
// separated by single spaces and never split: a word wider than maxWidth
// gets a line of its own. Empty text yields no lines.
func Wrap(text string, maxWidth float64, m Measurer) []string {
	var lines []string
	current := ""
	for _, word := range strings.Split(text, " ") {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && m.Measure(candidate) > maxWidth {
			if line := strings.TrimSpace(current); line != "" {
				lines = append(lines, line)
			}
			current = word
			continue
		}
		current = candidate
	}
	if line := strings.TrimSpace(current); line != "" {
		lines = append(lines, line)
	}
	return lines
}

// TextLine is one positioned line of overlay text. Y is the bottom anchor of
// the line: glyph descenders end there.
type TextLine struct {
	Text   string
	X, Y   float64
	Size   int
	Weight Weight
}

// TextBlock is the text input for LayoutText.
type TextBlock struct {
	Text string
	Size int
}

// LayoutText stacks the body block above the bottom margin and the title
// block above the body, both growing upward and left aligned. Blank blocks
// are skipped. Lines are returned body first, each block bottom line first.
func LayoutText(canvasW, canvasH int, title, body TextBlock, fonts FontSource) []TextLine {
	area := layout.Inset(image.Rect(0, 0, canvasW, canvasH), TextMargin)
	maxWidth := float64(area.Dx())
	y := float64(area.Max.Y)

	var out []TextLine
	place := func(block TextBlock, weight Weight) {
		face := fonts.Face(float64(block.Size), weight)
		lines := Wrap(block.Text, maxWidth, FaceMeasurer(face))
		for i := len(lines) - 1; i >= 0; i-- {
			out = append(out, TextLine{Text: lines[i], X: float64(area.Min.X), Y: y, Size: block.Size, Weight: weight})
			y -= float64(block.Size) * LineHeight
		}
	}

	if strings.TrimSpace(body.Text) != "" {
		place(body, WeightRegular)
		y -= BlockGap
	}
	if strings.TrimSpace(title.Text) != "" {
		place(title, WeightBold)
	}
	return out
}
