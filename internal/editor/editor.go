// Package editor is the adapter between UI events and the render core. Each
// event becomes a settings mutation; the editor applies it, re-renders the
// canvas synchronously and persists the result.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/rook-computer/socialcard/internal/imagesource"
	"github.com/rook-computer/socialcard/internal/render"
	"github.com/rook-computer/socialcard/internal/settings"
	"github.com/rook-computer/socialcard/internal/state"
)

var ErrUnknownPreset = errors.New("unknown canvas preset")

type Options struct {
	Store    settings.Store
	Renderer *render.Renderer
	// Sink, when set, receives every rendered frame.
	Sink   render.Sink
	Logger Logger
	State  *state.Store
	Now    func() time.Time
}

// Editor owns the settings, the loaded image, the canvas and the drag
// gesture. All methods are safe for concurrent use; renders are serialised.
type Editor struct {
	logger  Logger
	store   settings.Store
	sink    render.Sink
	state   *state.Store
	now     func() time.Time
	uploads imagesource.Generation

	mu       sync.Mutex
	settings settings.Settings
	source   *imagesource.SourceImage
	canvas   *render.Canvas
	renderer *render.Renderer
	drag     Drag
	frame    uint64
}

// New loads the saved settings, sizes the canvas and draws the first frame.
func New(ctx context.Context, opts Options) *Editor {
	e := &Editor{
		logger:   opts.Logger,
		store:    opts.Store,
		sink:     opts.Sink,
		state:    opts.State,
		now:      opts.Now,
		renderer: opts.Renderer,
	}
	if e.logger == nil {
		e.logger = NoopLogger{}
	}
	if e.store == nil {
		e.store = settings.NewMemoryStore()
	}
	if e.state == nil {
		e.state = state.NewStore()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.renderer == nil {
		e.renderer = render.NewRenderer(nil, nil)
	}
	if e.renderer.Logger == nil {
		e.renderer.Logger = e.logger
	}

	e.settings = settings.Load(ctx, e.store, e.logger)
	size := e.settings.CanvasDimensions()
	e.canvas = render.NewCanvas(size.Width, size.Height)
	e.logger.Infof("editor", "canvas %dx%d (%s)", size.Width, size.Height, e.settings.CanvasSize)

	e.mu.Lock()
	_ = e.redrawLocked()
	e.mu.Unlock()
	return e
}

// Snapshot returns the state published by the last render.
func (e *Editor) Snapshot() state.State {
	return e.state.Snapshot()
}

// Settings returns the current settings.
func (e *Editor) Settings() settings.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Update applies mutations, then resizes, re-renders and saves.
func (e *Editor) Update(ctx context.Context, mutations ...settings.Mutation) (state.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitLocked(ctx, e.settings.Apply(mutations...))
}

func (e *Editor) SetPreset(ctx context.Context, preset settings.Preset) (state.State, error) {
	if !preset.Valid() {
		return e.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return e.Update(ctx, settings.WithPreset(preset))
}

// SetCustomSize stores custom dimensions. The canvas only changes size when
// the custom preset is selected.
func (e *Editor) SetCustomSize(ctx context.Context, width, height int) (state.State, error) {
	return e.Update(ctx, settings.WithCustomSize(width, height))
}

// Replace sets every field from a JSON document merged over the defaults.
func (e *Editor) Replace(ctx context.Context, data []byte) (state.State, error) {
	next, err := settings.Merge(settings.Defaults(), data)
	if err != nil {
		return e.Snapshot(), err
	}
	if !next.CanvasSize.Valid() {
		return e.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownPreset, next.CanvasSize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitLocked(ctx, next)
}

// Patch merges a partial JSON document over the current settings.
func (e *Editor) Patch(ctx context.Context, data []byte) (state.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := settings.Merge(e.settings, data)
	if err != nil {
		return e.state.Snapshot(), err
	}
	if !next.CanvasSize.Valid() {
		return e.state.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownPreset, next.CanvasSize)
	}
	return e.commitLocked(ctx, next)
}

// ResetAll restores the defaults and drops the loaded image. Uploads still
// decoding are invalidated.
func (e *Editor) ResetAll(ctx context.Context) (state.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.uploads.Next()
	e.source = nil
	e.drag.End()
	e.logger.Infof("editor", "reset to defaults")
	return e.commitLocked(ctx, settings.Defaults())
}

// ResetImagePosition recentres the image without touching other settings.
func (e *Editor) ResetImagePosition(ctx context.Context) (state.State, error) {
	return e.Update(ctx, settings.ResetPosition())
}

// BeginUpload issues the token a decode result must present to be applied.
func (e *Editor) BeginUpload() uint64 {
	return e.uploads.Next()
}

// CompleteUpload installs a decoded image unless a newer upload has started
// since token was issued.
func (e *Editor) CompleteUpload(token uint64, src *imagesource.SourceImage) (state.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.uploads.Check(token); err != nil {
		e.logger.Infof("editor", "dropping stale upload: %v", err)
		return e.state.Snapshot(), err
	}
	if src == nil || src.Image == nil {
		return e.state.Snapshot(), render.ErrEmptyImage
	}
	e.source = src
	e.logger.Infof("editor", "image loaded %dx%d %s", src.Width, src.Height, src.Format)
	err := e.redrawLocked()
	return e.state.Snapshot(), err
}

// LoadImage decodes an upload and shows it. Non-image content types are
// rejected with imagesource.ErrNotImage and change nothing. Decoding runs
// without holding the editor lock.
func (e *Editor) LoadImage(ctx context.Context, contentType string, r io.Reader) (state.State, error) {
	if !imagesource.Accept(contentType) {
		e.logger.Infof("editor", "ignoring upload of type %q", contentType)
		return e.Snapshot(), fmt.Errorf("%w: %q", imagesource.ErrNotImage, contentType)
	}
	token := e.BeginUpload()
	src, err := imagesource.Decode(r, contentType)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			// A body cut short by a departed client is not a decode failure.
			return e.Snapshot(), cerr
		}
		e.logger.Errorf("editor", "could not decode upload: %v", err)
		return e.Snapshot(), err
	}
	if err := ctx.Err(); err != nil {
		return e.Snapshot(), err
	}
	return e.CompleteUpload(token, src)
}

// ClearImage removes the loaded image.
func (e *Editor) ClearImage(ctx context.Context) (state.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.uploads.Next()
	e.source = nil
	e.drag.End()
	err := e.redrawLocked()
	return e.state.Snapshot(), err
}

// StartDrag presses the pointer at (x, y). Without an image it stays idle.
func (e *Editor) StartDrag(x, y float64) state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag.Start(x, y, e.source != nil)
	e.publishLocked(nil)
	return e.state.Snapshot()
}

// MoveDrag pans the image by the pointer delta and re-renders. Moves outside
// a gesture are ignored.
func (e *Editor) MoveDrag(ctx context.Context, x, y float64) (state.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.source == nil {
		e.drag.End()
		return e.state.Snapshot(), nil
	}
	dx, dy, ok := e.drag.Move(x, y)
	if !ok {
		return e.state.Snapshot(), nil
	}
	if d, ok := e.logger.(debugLogger); ok {
		d.Debugf("drag", "pan by (%.1f,%.1f) to (%.1f,%.1f)", dx, dy, e.settings.ImageX+dx, e.settings.ImageY+dy)
	}
	return e.commitLocked(ctx, e.settings.Apply(settings.PanBy(dx, dy)))
}

// EndDrag releases the pointer, or handles it leaving the canvas.
func (e *Editor) EndDrag() state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag.End()
	e.publishLocked(nil)
	return e.state.Snapshot()
}

// Frame returns a copy of the current canvas pixels.
func (e *Editor) Frame() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.Snapshot()
}

// ExportPNG encodes the current canvas and names it after the export time.
func (e *Editor) ExportPNG() (data []byte, filename string, err error) {
	frame := e.Frame()
	data, err = render.PNGBytes(frame)
	if err != nil {
		return nil, "", err
	}
	return data, render.ExportFilename(e.now()), nil
}

func (e *Editor) commitLocked(ctx context.Context, next settings.Settings) (state.State, error) {
	e.settings = next
	e.resizeLocked()
	err := e.redrawLocked()
	if serr := settings.Save(ctx, e.store, e.settings); serr != nil {
		e.logger.Warnf("settings", "could not save settings: %v", serr)
	}
	return e.state.Snapshot(), err
}

func (e *Editor) resizeLocked() {
	size := e.settings.CanvasDimensions()
	if w, h := e.canvas.Size(); w == size.Width && h == size.Height {
		return
	}
	e.canvas.Resize(size.Width, size.Height)
	e.logger.Infof("editor", "canvas resized to %dx%d", size.Width, size.Height)
}

func (e *Editor) redrawLocked() error {
	var src image.Image
	if e.source != nil {
		src = e.source.Image
	}
	err := e.renderer.Render(e.canvas, e.settings, src)
	if err != nil {
		e.logger.Errorf("editor", "render failed: %v", err)
	} else {
		e.frame++
	}
	if e.sink != nil {
		if perr := e.sink.Present(e.canvas.Image()); perr != nil {
			e.logger.Warnf("editor", "sink present failed: %v", perr)
		}
	}
	e.publishLocked(err)
	return err
}

func (e *Editor) publishLocked(renderErr error) {
	w, h := e.canvas.Size()
	next := state.State{
		Phase:    state.READY,
		Settings: e.settings,
		Canvas:   settings.Size{Width: w, Height: h},
		Drag:     e.drag.Info(),
		Cursor:   e.drag.Cursor(e.source != nil),
		Frame:    e.frame,
	}
	if e.source != nil {
		next.Image = state.ImageInfo{Loaded: true, Width: e.source.Width, Height: e.source.Height, Format: e.source.Format}
	}
	if renderErr != nil {
		next.Phase = state.ERROR
		next.LastError = renderErr.Error()
	}
	e.state.Publish(next)
}
