// Package watch re-runs a callback whenever one of a set of files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 150 * time.Millisecond

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Watcher monitors files for changes. Parent directories are watched so
// editors that save by renaming a temp file are still noticed.
type Watcher struct {
	Logger   Logger
	Debounce time.Duration

	files   map[string]bool
	watcher *fsnotify.Watcher
}

// New creates a watcher for paths.
func New(paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no files given")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{Debounce: DefaultDebounce, files: make(map[string]bool), watcher: fsWatcher}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch folder %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run calls onChange after each burst of changes, one call at a time, until
// ctx is cancelled. Callback errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	defer w.watcher.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.infof("%s %s", event.Op, event.Name)
			timer.Reset(w.debounce())

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				w.errorf("re-render failed: %v", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.errorf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) infof(format string, args ...interface{}) {
	if w.Logger != nil {
		w.Logger.Infof("watch", format, args...)
	}
}

func (w *Watcher) errorf(format string, args ...interface{}) {
	if w.Logger != nil {
		w.Logger.Errorf("watch", format, args...)
	}
}
