package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portfinder/internal/docker"
	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/port"
)

// portFlags holds the command-line flags specific to the port command.
type portFlags struct {
	host        string
	base        int
	max         int
	count       int
	maxAttempts int
	avoidDocker bool
}

// NewPortCommand creates the "port" subcommand.
func NewPortCommand() *cobra.Command {
	flags := &portFlags{}

	cmd := &cobra.Command{
		Use:   "port",
		Short: "Find a free TCP port",
		Long: `Find the first TCP port at or above --base that can be bound.

Without --host the port must be free on 0.0.0.0, 127.0.0.1, :: and ::1
(address families missing on this machine are skipped). With --host only
that address is checked.`,
		Example: `  # First free port from 8000
  portfinder port

  # Three free ports for a test cluster
  portfinder port --base 9000 --count 3

  # Skip ports published by Docker containers, including stopped ones
  portfinder port --avoid-docker --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPort(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "Host to bind (default: all local hosts)")
	cmd.Flags().IntVar(&flags.base, "base", port.DefaultBasePort, "First port to try (0 asks the OS)")
	cmd.Flags().IntVar(&flags.max, "max", port.DefaultMaxPort, "Highest port to try")
	cmd.Flags().IntVarP(&flags.count, "count", "n", 1, "Number of ports to find")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 0, "Stop after this many probes (0: whole range)")
	cmd.Flags().BoolVar(&flags.avoidDocker, "avoid-docker", false, "Treat ports published by Docker containers as in use")

	return cmd
}

// runPort merges flags over the loaded config, optionally collects Docker
// reservations, and prints the found ports.
func runPort(cmd *cobra.Command, flags *portFlags) error {
	if flags.count < 1 {
		return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("--count must be at least 1, got %d", flags.count))
	}

	opts := portOptions(cmd, flags)

	if flags.avoidDocker {
		reserved, err := dockerReservedPorts(cmd.Context())
		if err != nil {
			return err
		}
		VerboseLog("Docker publishes %d tcp port(s): %s", len(reserved), FormatPorts(reserved))
		opts.Reserved = reserved
	}

	ports, err := port.FindFreePorts(flags.count, opts)
	if err != nil {
		return searchError("no free port found", err)
	}

	return printEndpoints(cmd.OutOrStdout(), tcpEndpoints(opts.Host, ports))
}

// portOptions starts from the config and applies only the flags the user
// actually set, so config files and env vars are not masked by defaults.
func portOptions(cmd *cobra.Command, flags *portFlags) port.Options {
	opts := cfg.PortOptions()
	opts.Logger = Logger()

	if cmd.Flags().Changed("host") {
		opts.Host = flags.host
	}
	if cmd.Flags().Changed("base") {
		opts.BasePort = flags.base
	}
	if cmd.Flags().Changed("max") {
		opts.MaxPort = flags.max
	}
	if cmd.Flags().Changed("max-attempts") {
		opts.MaxAttempts = flags.maxAttempts
	}
	return opts
}

// dockerReservedPorts lists the host ports published by all containers.
func dockerReservedPorts(ctx context.Context) ([]int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := docker.NewClient()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning, "failed to connect to Docker", err)
	}
	defer client.Close()

	return docker.ReservedHostPorts(ctx, client, "tcp")
}

// FormatPorts joins ports with commas for log and text output.
// It returns "-" for an empty list.
//
// Example:
//
//	[3000, 5432] → "3000,5432"
func FormatPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}
