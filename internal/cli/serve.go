package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rook-computer/socialcard/internal/config"
	"github.com/rook-computer/socialcard/internal/console"
	"github.com/rook-computer/socialcard/internal/editor"
	"github.com/rook-computer/socialcard/internal/render"
	"github.com/rook-computer/socialcard/internal/settings"
	"github.com/rook-computer/socialcard/internal/web"
)

type serveOpts struct {
	listen      string
	dev         bool
	staticDir   string
	publicURL   string
	store       string
	storePath   string
	redisAddr   string
	framebuffer string
}

func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor web UI and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *configFromContext(cmd.Context())
			srvCfg, err := web.DefaultServerConfigFromEnv(cfg.Listen)
			if err != nil {
				return err
			}
			if cfg.Dev {
				srvCfg.DevMode = true
			}
			if srvCfg.PublicURL == "" {
				srvCfg.PublicURL = cfg.PublicURL
			}

			flags := cmd.Flags()
			if flags.Changed("listen") {
				srvCfg.ListenAddr = opts.listen
			}
			if flags.Changed("dev") {
				srvCfg.DevMode = opts.dev
			}
			if flags.Changed("public-url") {
				srvCfg.PublicURL = opts.publicURL
			}
			if flags.Changed("static-dir") {
				cfg.StaticDir = opts.staticDir
			}
			if flags.Changed("store") {
				cfg.Store.Backend = opts.store
			}
			if flags.Changed("store-path") {
				cfg.Store.Path = opts.storePath
			}
			if flags.Changed("redis-addr") {
				cfg.Store.Redis.Addr = opts.redisAddr
			}
			if flags.Changed("framebuffer") {
				cfg.Framebuffer.Device = opts.framebuffer
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return runServe(cmd.Context(), &cfg, srvCfg)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default :8080, env "+web.EnvListenAddr+")")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "enable permissive CORS for UI development")
	cmd.Flags().StringVar(&opts.staticDir, "static-dir", "", "serve the UI from this directory instead of the embedded page")
	cmd.Flags().StringVar(&opts.publicURL, "public-url", "", "editor URL encoded by /api/v1/qrcode")
	cmd.Flags().StringVar(&opts.store, "store", "", "settings store: file, redis or memory")
	cmd.Flags().StringVar(&opts.storePath, "store-path", "", "settings file for the file store")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address for the redis store")
	cmd.Flags().StringVar(&opts.framebuffer, "framebuffer", "", "mirror every frame to this framebuffer device (linux)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, srvCfg web.ServerConfig) error {
	logger := loggerFromContext(ctx)
	clog := componentLogger(ctx)

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sink render.Sink
	if cfg.Framebuffer.Device != "" {
		fb := render.NewFBSink(cfg.Framebuffer.Device)
		fb.Logger = clog
		if err := fb.Start(ctx); err != nil {
			logger.Warn("Framebuffer preview disabled", "device", cfg.Framebuffer.Device, "err", err)
		} else {
			sink = fb
			defer fb.Stop()
			if restore, err := console.Claim(clog); err != nil {
				logger.Warn("Console left in text mode", "err", err)
			} else {
				defer restore()
			}
			console.ExitOnKey(ctx, clog, console.KeyF4, cancel)
		}
	}

	renderer := render.NewRenderer(nil, nil)
	if cfg.Seed != nil {
		renderer.Rand = newRand(*cfg.Seed)
	}

	ed := editor.New(ctx, editor.Options{
		Store:    store,
		Renderer: renderer,
		Sink:     sink,
		Logger:   clog,
	})

	srv := web.NewHTTPServer(srvCfg, ed)
	srv.StaticDir = cfg.StaticDir
	srv.Logger = clog
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("Editor ready", "addr", srv.Addr(), "store", cfg.Store.Backend)

	<-ctx.Done()
	logger.Info("Shutting down")
	return srv.Stop()
}

// openStore builds the configured settings store and its cleanup.
func openStore(ctx context.Context, cfg config.StoreConfig) (settings.Store, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendMemory:
		return settings.NewMemoryStore(), noop, nil
	case config.BackendRedis:
		rs, err := settings.NewRedisStore(ctx, settings.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, noop, err
		}
		return rs, closer(rs), nil
	default:
		fs, err := settings.NewFileStore(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
