package render

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// tenPerRune pretends every rune is 10px wide.
var tenPerRune = MeasureFunc(func(s string) float64 { return float64(utf8.RuneCountInString(s)) * 10 })

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"two lines", "the quick brown fox", 100, []string{"the quick", "brown fox"}},
		{"exact fit", "abcde fghi", 100, []string{"abcde fghi"}},
		{"long word alone", "a incomprehensibilities b", 100, []string{"a", "incomprehensibilities", "b"}},
		{"leading long word", "incomprehensibilities is long", 100, []string{"incomprehensibilities", "is long"}},
		{"wide enough", "the quick brown fox", 10000, []string{"the quick brown fox"}},
		{"single word", "hello", 10, []string{"hello"}},
		{"empty", "", 100, nil},
		{"spaces only", "   ", 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.maxWidth, tenPerRune)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %v) = %q, want %q", tt.text, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestWrapKeepsWordOrderAndFits(t *testing.T) {
	text := "Lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut labore et dolore magna aliqua"
	words := strings.Fields(text)
	for _, width := range []float64{30, 60, 90, 150, 400, 2000} {
		lines := Wrap(text, width, tenPerRune)

		var rejoined []string
		for _, line := range lines {
			rejoined = append(rejoined, strings.Fields(line)...)
			if tenPerRune(line) > width && len(strings.Fields(line)) > 1 {
				t.Errorf("width %v: multi-word line %q is %vpx wide", width, line, tenPerRune(line))
			}
		}
		if !reflect.DeepEqual(rejoined, words) {
			t.Errorf("width %v: words reordered or lost: %q", width, rejoined)
		}
	}
}

func TestWrapSingleLineWhenItFits(t *testing.T) {
	text := "fits on one line"
	if got := Wrap(text, tenPerRune(text), tenPerRune); len(got) != 1 {
		t.Errorf("Wrap at own width = %q, want one line", got)
	}
}

func TestLayoutTextTitleOnly(t *testing.T) {
	fonts := NewFontSet()
	lines := LayoutText(1200, 630, TextBlock{Text: "Hello World", Size: 48}, TextBlock{Size: 24}, fonts)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %+v", len(lines), lines)
	}
	got := lines[0]
	if got.Text != "Hello World" || got.X != 40 || !near(got.Y, 590) || got.Size != 48 || got.Weight != WeightBold {
		t.Errorf("title line = %+v", got)
	}
}

func TestLayoutTextBodyBelowTitle(t *testing.T) {
	fonts := NewFontSet()
	lines := LayoutText(1200, 630, TextBlock{Text: "Title", Size: 48}, TextBlock{Text: "Body", Size: 24}, fonts)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %+v", len(lines), lines)
	}
	body, title := lines[0], lines[1]
	if body.Text != "Body" || !near(body.Y, 590) || body.Weight != WeightRegular {
		t.Errorf("body line = %+v", body)
	}
	// 590 - 24*1.2 - 10
	if title.Text != "Title" || !near(title.Y, 551.2) || title.Weight != WeightBold {
		t.Errorf("title line = %+v", title)
	}
}

func TestLayoutTextMultiLineBody(t *testing.T) {
	fonts := NewFontSet()
	body := strings.TrimSpace(strings.Repeat("wrapping words ", 20))
	lines := LayoutText(1200, 630, TextBlock{}, TextBlock{Text: body, Size: 24}, fonts)
	if len(lines) < 2 {
		t.Fatalf("expected body to wrap, got %d lines", len(lines))
	}
	for i, line := range lines {
		if want := 590 - float64(i)*24*LineHeight; !near(line.Y, want) {
			t.Errorf("line %d y = %v, want %v", i, line.Y, want)
		}
		if line.X != TextMargin {
			t.Errorf("line %d x = %v, want %v", i, line.X, TextMargin)
		}
	}
	if !strings.HasSuffix(body, lines[0].Text) {
		t.Errorf("bottom line %q is not the end of the body", lines[0].Text)
	}
}

func TestLayoutTextBlankBlocksSkipped(t *testing.T) {
	lines := LayoutText(1200, 630, TextBlock{Text: "  ", Size: 48}, TextBlock{Text: "", Size: 24}, NewFontSet())
	if len(lines) != 0 {
		t.Errorf("got %+v, want no lines", lines)
	}

	// Title sits on the bottom margin when the body is blank.
	lines = LayoutText(1500, 500, TextBlock{Text: "T", Size: 48}, TextBlock{Text: " ", Size: 24}, NewFontSet())
	if len(lines) != 1 || !near(lines[0].Y, 460) {
		t.Errorf("title with blank body = %+v, want y 460", lines)
	}
}
