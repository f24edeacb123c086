package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "settings.json")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(target)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	if err := os.WriteFile(other, []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
		t.Fatal("change to an unwatched file triggered the callback")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(target, []byte(`{"zoom":120}`), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewRequiresPaths(t *testing.T) {
	if _, err := New(); err == nil {
		t.Error("expected error without paths")
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing-dir", "file.json")); err == nil {
		t.Error("expected error for a missing directory")
	}
}
