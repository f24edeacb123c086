package layout

import (
	"image"
	"testing"
)

func TestInset(t *testing.T) {
	tests := []struct {
		name string
		rect image.Rectangle
		pad  int
		want image.Rectangle
	}{
		{"canvas margin", image.Rect(0, 0, 1200, 630), 40, image.Rect(40, 40, 1160, 590)},
		{"zero padding", image.Rect(0, 0, 10, 10), 0, image.Rect(0, 0, 10, 10)},
		{"overlapping padding normalizes", image.Rect(0, 0, 60, 60), 40, image.Rect(20, 20, 40, 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Inset(tt.rect, tt.pad); got != tt.want {
				t.Errorf("Inset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)
	tests := []struct {
		name string
		rect image.Rectangle
		want image.Rectangle
	}{
		{"inside", image.Rect(10, 10, 20, 20), image.Rect(10, 10, 20, 20)},
		{"overhang", image.Rect(-5, -5, 120, 60), bounds},
		{"disjoint", image.Rect(200, 0, 300, 10), image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.rect, bounds); got != tt.want {
				t.Errorf("Clamp = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnclosing(t *testing.T) {
	got := Enclosing(PointF{0.5, 2.2}, PointF{-1.5, 7.9}, PointF{10.1, 3})
	if want := image.Rect(-2, 2, 11, 8); got != want {
		t.Errorf("Enclosing = %v, want %v", got, want)
	}
	if got := Enclosing(); !got.Empty() {
		t.Errorf("Enclosing() = %v, want empty", got)
	}
}
