package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rook-computer/socialcard/internal/assets"
)

var _ Server = (*HTTPServer)(nil)

type HTTPServer struct {
	Config ServerConfig

	// StaticDir, when set to an existing directory, is served at "/".
	// The API remains available under /api/v1/.
	StaticDir string

	Editor EditorAPI
	Logger Logger

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewHTTPServer(cfg ServerConfig, editor EditorAPI) *HTTPServer {
	return &HTTPServer{Config: cfg, Editor: editor}
}

// Handler builds the full handler tree: API, UI and, in dev mode, CORS.
func (s *HTTPServer) Handler() http.Handler {
	var handler http.Handler = NewDefaultMux(s.StaticDir, APIV1Deps{
		Editor:    s.Editor,
		Logger:    s.logger(),
		PublicURL: s.Config.PublicURL,
	})
	if s.Config.DevMode {
		handler = WithDevCORS(handler)
	}
	return handler
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}
	if s.Editor == nil {
		return errors.New("web server has no editor")
	}

	addr := s.Config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.logger().Infof("web", "listening on %s (dev=%v)", ln.Addr(), s.Config.DevMode)

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.logger().Errorf("web", "serve: %v", err)
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *HTTPServer) logger() Logger {
	if s.Logger == nil {
		return noopLogger{}
	}
	return s.Logger
}

// StaticUIHandler serves dir at "/" when it is an existing directory, and the
// embedded editor page when dir is empty.
func StaticUIHandler(dir string) http.Handler {
	var fileServer http.Handler
	if dir == "" {
		fileServer = http.FileServer(http.FS(assets.WebUI))
	} else {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			})
		}
		fileServer = http.FileServer(http.Dir(dir))
	}

	// When serving at '/', ensure we don't accidentally expose parent directory traversal.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}
