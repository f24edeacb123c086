package state

import (
	"encoding/json"
	"testing"

	"github.com/rook-computer/socialcard/internal/settings"
)

func TestNewStoreStartsBooting(t *testing.T) {
	snap := NewStore().Snapshot()
	if snap.Phase != BOOTING || snap.Cursor != CursorDefault || snap.Settings != settings.Defaults() {
		t.Errorf("initial state = %+v", snap)
	}
}

func TestPublishReplacesState(t *testing.T) {
	store := NewStore()
	store.Publish(State{Phase: READY, Frame: 3, Cursor: CursorGrab})
	if snap := store.Snapshot(); snap.Phase != READY || snap.Frame != 3 || snap.Cursor != CursorGrab {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestPhaseJSON(t *testing.T) {
	for _, phase := range []Phase{BOOTING, READY, ERROR} {
		data, err := json.Marshal(State{Phase: phase})
		if err != nil {
			t.Fatal(err)
		}
		var back State
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back.Phase != phase {
			t.Errorf("phase %v round-tripped to %v", phase, back.Phase)
		}
	}
	var p Phase
	if err := p.UnmarshalText([]byte("rendering")); err == nil {
		t.Error("expected error for unknown phase")
	}
}
