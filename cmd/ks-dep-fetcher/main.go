package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
)

// Global command flags
var (
	configPath string
	logLevel   string
	verbose    bool
)

func main() {
	root := createRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand creates the root command with all subcommands attached.
func createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ks-dep-fetcher",
		Short: "Resolve and download the RPM dependency closure of a kickstart file",
		Long: `ks-dep-fetcher reads a kickstart (KS) file, collects the packages
its %packages sections request, resolves their full dependency closure
against RPM repository metadata and downloads the matching RPMs,
optionally including -debuginfo/-debugsource siblings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Shorthand for --log-level debug")

	root.AddCommand(createListCommand())
	root.AddCommand(createFetchCommand())
	root.AddCommand(createValidateCommand())

	attachLoggingHooks(root)
	return root
}

// attachLoggingHooks installs a pre-run hook on every subcommand so the
// logger exists before any command logic runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			return initLogging(resolveRequestedLogLevel(cmd))
		}
	}
}

// resolveRequestedLogLevel prefers an explicit --log-level; --verbose is a
// fallback that maps to debug.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	f := cmd.Flags().Lookup("verbose")
	if f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}

func initLogging(level string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger.Init(z.Sugar())
	return nil
}
