package web

import (
	"context"
	"io"

	"github.com/rook-computer/socialcard/internal/settings"
	"github.com/rook-computer/socialcard/internal/state"
)

// EditorAPI is the editor surface the HTTP API drives.
//
// The concrete implementation is *editor.Editor.
type EditorAPI interface {
	Snapshot() state.State
	Replace(ctx context.Context, data []byte) (state.State, error)
	Patch(ctx context.Context, data []byte) (state.State, error)
	SetPreset(ctx context.Context, preset settings.Preset) (state.State, error)
	SetCustomSize(ctx context.Context, width, height int) (state.State, error)
	LoadImage(ctx context.Context, contentType string, r io.Reader) (state.State, error)
	ClearImage(ctx context.Context) (state.State, error)
	ResetAll(ctx context.Context) (state.State, error)
	ResetImagePosition(ctx context.Context) (state.State, error)
	StartDrag(x, y float64) state.State
	MoveDrag(ctx context.Context, x, y float64) (state.State, error)
	EndDrag() state.State
	ExportPNG() (data []byte, filename string, err error)
}

// Logger matches the logging shape used across the application.
// It is intentionally tiny so callers can pass existing loggers without adapters.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

type APIV1Deps struct {
	Editor EditorAPI
	Logger Logger
	// PublicURL is encoded by /qrcode. When empty it is derived from the
	// request host.
	PublicURL string
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Logger == nil {
		out.Logger = noopLogger{}
	}
	return out
}
