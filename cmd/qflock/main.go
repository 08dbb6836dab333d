package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qflock/pkg/config"
	"github.com/ajitpratap0/qflock/pkg/logger"
	"github.com/ajitpratap0/qflock/pkg/observability"
)

var version = "0.1.0"

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	trace      bool
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var flags globalFlags

	root := &cobra.Command{
		Use:   "qflock",
		Short: "qflock - columnar result reader",
		Long: `qflock decodes columnar query results sent as per-column buffers,
some raw and some zstd-compressed, and reads them through a row cursor.

The pack and inspect commands work on fixtures: a directory holding one file
per column and a manifest.json describing them.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.trace, "trace", false, "Export trace spans to stderr")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qflock v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newPackCommand(&flags))
	root.AddCommand(newInspectCommand(&flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and initializes the global logger and
// tracer provider. The returned function flushes both.
func setup(flags *globalFlags) (*config.Config, func(), error) {
	cfg := config.NewConfig()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.trace {
		cfg.Tracing.Enabled = true
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	shutdown, err := observability.Init(cfg.Tracing, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush trace spans", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return cfg, cleanup, nil
}
