// Package cli implements the socialcard command-line interface.
//
// The commands are:
//   - serve: run the editor HTTP API and UI
//   - render: compose a settings document and an image into a PNG
//   - presets: list the canvas presets
//
// All commands accept --verbose (-v) for debug logging and --config for a
// YAML configuration file. The logger and the loaded configuration travel
// through the command context.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rook-computer/socialcard/internal/config"
)

// EnvStdioLog names a file that receives stdout and stderr.
const EnvStdioLog = "SOCIALCARD_STDIO_LOG"

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the values shown by --version. main calls it with values
// injected through ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

type rootOpts struct {
	verbose    bool
	configPath string
	stdioLog   string
}

// Execute runs the command tree until ctx is cancelled or the command ends.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var opts rootOpts

	root := &cobra.Command{
		Use:          "socialcard",
		Short:        "socialcard composes social media preview images",
		Long:         `socialcard composes social media preview images from a photo and a title/body text overlay, either interactively through the web editor or from the command line.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logPath := opts.stdioLog
			if logPath == "" {
				logPath = os.Getenv(EnvStdioLog)
			}
			if logPath != "" {
				if err := redirectStdIO(logPath); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "stdio log redirect error:", err)
				}
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			level, err := log.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			if opts.verbose {
				level = log.DebugLevel
			}

			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("socialcard %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.stdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+EnvStdioLog)

	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newPresetsCmd())

	return root
}
