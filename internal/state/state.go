// Package state holds the observable editor state that readers such as the
// HTTP API poll without waiting for a render to finish.
package state

import (
	"fmt"
	"sync"

	"github.com/rook-computer/socialcard/internal/settings"
)

type Phase int

const (
	BOOTING Phase = iota
	READY
	ERROR
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case READY:
		return "ready"
	case ERROR:
		return "error"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{BOOTING, READY, ERROR} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Cursor hints how the preview should look under the pointer.
type Cursor string

const (
	CursorDefault  Cursor = "default"
	CursorGrab     Cursor = "grab"
	CursorGrabbing Cursor = "grabbing"
)

type ImageInfo struct {
	Loaded bool   `json:"loaded"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Format string `json:"format,omitempty"`
}

type DragInfo struct {
	Dragging bool    `json:"dragging"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type State struct {
	Phase    Phase             `json:"phase"`
	Settings settings.Settings `json:"settings"`
	Canvas   settings.Size     `json:"canvas"`
	Image    ImageInfo         `json:"image"`
	Drag     DragInfo          `json:"drag"`
	Cursor   Cursor            `json:"cursor"`
	// Frame counts completed renders.
	Frame     uint64 `json:"frame"`
	LastError string `json:"lastError,omitempty"`
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING, Settings: settings.Defaults(), Cursor: CursorDefault}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

// Publish replaces the whole state after a render.
func (store *Store) Publish(next State) {
	store.mu.Lock()
	store.state = next
	store.mu.Unlock()
}
