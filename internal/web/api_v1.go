package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rook-computer/socialcard/internal/editor"
	"github.com/rook-computer/socialcard/internal/imagesource"
	"github.com/rook-computer/socialcard/internal/render"
	"github.com/rook-computer/socialcard/internal/settings"
	"github.com/rook-computer/socialcard/internal/state"
)

const (
	maxSettingsBytes = 1 << 20
	maxUploadBytes   = 32 << 20
	maxQRCodeSize    = 2048
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ignoredResponse struct {
	OK      bool `json:"ok"`
	Ignored bool `json:"ignored"`
}

type presetRequest struct {
	Preset settings.Preset `json:"preset"`
}

// customSizeRequest carries the raw input field values; either may be a
// number or a string, and a missing one keeps the current value.
type customSizeRequest struct {
	Width  json.RawMessage `json:"width"`
	Height json.RawMessage `json:"height"`
}

type pointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Reason is "release" or "leave" for /drag/end; informational only.
	Reason string `json:"reason,omitempty"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) { handleSettings(w, r, deps) })
	mux.HandleFunc("/presets", handlePresets)
	mux.HandleFunc("/preset", func(w http.ResponseWriter, r *http.Request) { handlePreset(w, r, deps) })
	mux.HandleFunc("/custom-size", func(w http.ResponseWriter, r *http.Request) { handleCustomSize(w, r, deps) })
	mux.HandleFunc("/image", func(w http.ResponseWriter, r *http.Request) { handleImage(w, r, deps) })
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		respondState(w, deps, "reset")(deps.Editor.ResetAll(r.Context()))
	})
	mux.HandleFunc("/reset-position", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		respondState(w, deps, "reset-position")(deps.Editor.ResetImagePosition(r.Context()))
	})
	mux.HandleFunc("/drag/", func(w http.ResponseWriter, r *http.Request) { handleDrag(w, r, deps) })
	mux.HandleFunc("/canvas.png", func(w http.ResponseWriter, r *http.Request) { handleCanvas(w, r, deps, false) })
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) { handleCanvas(w, r, deps, true) })
	mux.HandleFunc("/qrcode", func(w http.ResponseWriter, r *http.Request) { handleQRCode(w, r, deps) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
	return mux
}

func handleSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, deps.Editor.Snapshot())
	case http.MethodPut, http.MethodPatch:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSettingsBytes))
		if err != nil {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
			return
		}
		var snap state.State
		if r.Method == http.MethodPut {
			snap, err = deps.Editor.Replace(r.Context(), body)
		} else {
			snap, err = deps.Editor.Patch(r.Context(), body)
		}
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			switch {
			case errors.Is(err, editor.ErrUnknownPreset):
				writeAPIError(w, http.StatusBadRequest, "unknown_preset", err.Error())
			case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
				writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
			default:
				deps.Logger.Errorf("api", "settings update: %v", err)
				writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, snap)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handlePresets(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, settings.Presets())
}

func handlePreset(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req presetRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_preset", err.Error())
		return
	}
	snap, err := deps.Editor.SetPreset(r.Context(), req.Preset)
	if errors.Is(err, editor.ErrUnknownPreset) {
		writeAPIError(w, http.StatusBadRequest, "unknown_preset", err.Error())
		return
	}
	respondState(w, deps, "preset")(snap, err)
}

func handleCustomSize(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req customSizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_size", err.Error())
		return
	}
	cur := deps.Editor.Snapshot().Settings
	width, height := cur.CustomWidth, cur.CustomHeight
	if req.Width != nil {
		width = settings.ParseDimensionJSON(req.Width, settings.DefaultCustomWidth)
	}
	if req.Height != nil {
		height = settings.ParseDimensionJSON(req.Height, settings.DefaultCustomHeight)
	}
	respondState(w, deps, "custom-size")(deps.Editor.SetCustomSize(r.Context(), width, height))
}

func handleImage(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodDelete:
		respondState(w, deps, "clear-image")(deps.Editor.ClearImage(r.Context()))
		return
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !imagesource.Accept(contentType) {
		// Non-image uploads are ignored without changing anything.
		deps.Logger.Infof("api", "ignoring upload of type %q", contentType)
		writeJSON(w, http.StatusOK, ignoredResponse{OK: true, Ignored: true})
		return
	}
	if err := requireContentLength(r); err != nil {
		writeAPIError(w, http.StatusLengthRequired, "length_required", err.Error())
		return
	}
	if r.ContentLength > maxUploadBytes {
		writeAPIError(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds "+strconv.Itoa(maxUploadBytes>>20)+" MiB")
		return
	}

	body := io.LimitReader(r.Body, r.ContentLength)
	snap, err := deps.Editor.LoadImage(r.Context(), contentType, body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, imagesource.ErrNotImage):
		writeJSON(w, http.StatusOK, ignoredResponse{OK: true, Ignored: true})
	case errors.Is(err, imagesource.ErrStaleUpload):
		writeAPIError(w, http.StatusConflict, "stale_upload", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		deps.Logger.Infof("api", "upload abandoned: %v", err)
		writeAPIError(w, http.StatusRequestTimeout, "upload_cancelled", err.Error())
	default:
		writeAPIError(w, http.StatusUnprocessableEntity, "decode_failed", err.Error())
	}
}

func handleDrag(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req pointerRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeAPIError(w, http.StatusBadRequest, "invalid_pointer", err.Error())
			return
		}
	}

	switch strings.TrimPrefix(r.URL.Path, "/drag/") {
	case "start":
		writeJSON(w, http.StatusOK, deps.Editor.StartDrag(req.X, req.Y))
	case "move":
		respondState(w, deps, "drag")(deps.Editor.MoveDrag(r.Context(), req.X, req.Y))
	case "end":
		writeJSON(w, http.StatusOK, deps.Editor.EndDrag())
	default:
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	}
}

func handleCanvas(w http.ResponseWriter, r *http.Request, deps APIV1Deps, attachment bool) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	data, filename, err := deps.Editor.ExportPNG()
	if err != nil {
		deps.Logger.Errorf("api", "export: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	if attachment {
		setDownloadHeaders(w, filename, "image/png")
	} else {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func handleQRCode(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxQRCodeSize {
			writeAPIError(w, http.StatusBadRequest, "invalid_size", "size must be between 1 and "+strconv.Itoa(maxQRCodeSize))
			return
		}
		size = n
	}

	payload := deps.PublicURL
	if payload == "" {
		payload = editorURL(r)
	}
	img, err := render.QRCode(payload, size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qrcode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := render.EncodePNG(w, img); err != nil {
		deps.Logger.Errorf("api", "qrcode: %v", err)
	}
}

// editorURL is the address the client used to reach the API, pointing at the UI root.
func editorURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/"
}

// respondState writes the result of an editor call.
func respondState(w http.ResponseWriter, deps APIV1Deps, op string) func(state.State, error) {
	return func(snap state.State, err error) {
		if err != nil {
			deps.Logger.Errorf("api", "%s: %v", op, err)
			writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return false
	}
	return true
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Disposition", cd)
}

func requireContentLength(r *http.Request) error {
	// Reject chunked/unknown length so the decoder never reads past the declared body.
	if r.ContentLength <= 0 {
		return errLengthRequired
	}
	return nil
}

var errLengthRequired = &apiSimpleError{Message: "Content-Length header is required"}

type apiSimpleError struct{ Message string }

func (e *apiSimpleError) Error() string { return e.Message }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
