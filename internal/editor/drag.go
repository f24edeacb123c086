package editor

import "github.com/rook-computer/socialcard/internal/state"

// Drag is the pointer gesture that pans the image: idle until a press lands
// while an image is loaded, dragging until release or the pointer leaves.
type Drag struct {
	active bool
	lastX  float64
	lastY  float64
}

// Start begins a gesture at (x, y). It reports false when no image is loaded.
func (d *Drag) Start(x, y float64, hasImage bool) bool {
	if !hasImage {
		return false
	}
	d.active = true
	d.lastX, d.lastY = x, y
	return true
}

// Move returns the pointer delta since the previous event and remembers the
// new position. ok is false when no gesture is active.
func (d *Drag) Move(x, y float64) (dx, dy float64, ok bool) {
	if !d.active {
		return 0, 0, false
	}
	dx, dy = x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	return dx, dy, true
}

// End finishes the gesture; ending an idle gesture is a no-op.
func (d *Drag) End() {
	d.active = false
}

func (d *Drag) Active() bool { return d.active }

func (d *Drag) Info() state.DragInfo {
	return state.DragInfo{Dragging: d.active, X: d.lastX, Y: d.lastY}
}

// Cursor returns the pointer hint for the preview.
func (d *Drag) Cursor(hasImage bool) state.Cursor {
	switch {
	case d.active:
		return state.CursorGrabbing
	case hasImage:
		return state.CursorGrab
	default:
		return state.CursorDefault
	}
}
