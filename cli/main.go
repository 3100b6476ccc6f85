package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.4.0"

// app holds what every subcommand needs once flags and config are loaded.
type app struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg      *Config
	logger   *slog.Logger
	useColor bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(false, os.Stderr))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "cadence",
		Short:         "Play back timed workout routines",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newCheckCmd(a),
		newFmtCmd(a),
		newShowCmd(a),
		newRunCmd(a),
		newHistoryCmd(a),
	)
	return rootCmd
}

func (a *app) setup(logOut io.Writer) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := newLogger(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return &CLIError{Type: "config", Message: err.Error(), Hint: "Use one of debug, info, warn, error"}
	}

	a.cfg = cfg
	a.logger = logger
	a.useColor = ShouldUseColor(a.noColor, os.Stdout)
	a.logger.Debug("config loaded", "path", a.configPath, "version", version)
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
