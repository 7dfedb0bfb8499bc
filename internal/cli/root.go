// Package cli implements the cobra-based CLI commands for portfinder.
//
// Each subcommand (port, socket) is defined in its own file within this
// package. This file defines the root command that serves as the parent
// for all subcommands and handles global flags, configuration loading and
// logger setup.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portfinder/internal/config"
	"github.com/shinji-kodama/portfinder/internal/logger"
	"github.com/shinji-kodama/portfinder/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug, which logs every probe.
	verbose bool

	// configPath points at an optional YAML or JSONC config file.
	configPath string

	// logFormat overrides the configured log format (pretty or json).
	logFormat string
)

// Settings resolved in PersistentPreRunE, before any subcommand runs.
var (
	cfg = config.Default()
	log = logger.Discard()
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action; it only provides
// help text and global flags. Actual functionality is provided by the
// port and socket subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfinder",
		Short: "Find a free TCP port or UNIX socket path",
		Long: `portfinder probes candidates one at a time and prints the first free one.

Ports are tried upward from a base port; socket paths get an increasing
number before their extension (test.sock, test1.sock, test2.sock, ...).

The result is free when printed. Another process may still take it before
you bind it, so servers should handle "address in use" themselves.`,

		// We handle error output ourselves (text or JSON based on --json).
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every probe")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (.yaml, .yml, .json, .jsonc)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: pretty or json (default from config)")

	rootCmd.AddCommand(NewPortCommand())
	rootCmd.AddCommand(NewSocketCommand())

	return rootCmd
}

// setup loads the configuration and builds the logger.
func setup() error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidConfig, "invalid configuration", err)
	}
	cfg = loaded

	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return model.WrapCLIError(model.ExitInvalidConfig, "invalid configuration", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = logger.Format(strings.ToLower(cfg.LogFormat))
	log = logger.New(logCfg)
	return nil
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes; other errors are mapped by
// error kind and default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitCodeFor(err)))
	}
}

// searchError wraps a finder error with the exit code for its kind.
func searchError(message string, err error) error {
	return model.WrapCLIError(model.ExitCodeFor(err), message, err)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag. Errors always go to
// stderr; stdout is reserved for results.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog writes a debug record. It is shown only with --verbose or a
// debug log level.
func VerboseLog(format string, args ...interface{}) {
	log.Debug(fmt.Sprintf(format, args...))
}

// Logger returns the logger configured for the current invocation.
func Logger() *slog.Logger {
	return log
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
