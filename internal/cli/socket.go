package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/socket"
)

// socketFlags holds the command-line flags specific to the socket command.
type socketFlags struct {
	noDirCheck  bool
	createDir   bool
	dirMode     string
	maxAttempts int
}

// NewSocketCommand creates the "socket" subcommand.
func NewSocketCommand() *cobra.Command {
	flags := &socketFlags{}

	cmd := &cobra.Command{
		Use:   "socket [PATH]",
		Short: "Find a free UNIX socket path",
		Long: `Find the first socket path that can be listened on.

Candidates are PATH, then PATH with 1, 2, 3... before the extension:
/tmp/app.sock, /tmp/app1.sock, /tmp/app2.sock.

If the parent directory does not exist, PATH is returned unchanged since
nothing can be listening there. On Windows the result is a named pipe.`,
		Example: `  # Default path in the temp directory
  portfinder socket

  # Create the directory if it is missing
  portfinder socket /run/myapp/app.sock --create-dir --dir-mode 0700`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.SocketPath
			if len(args) > 0 {
				path = args[0]
			}
			return runSocket(cmd, path, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noDirCheck, "no-dir-check", false, "Probe even if the parent directory is missing")
	cmd.Flags().BoolVar(&flags.createDir, "create-dir", false, "Create a missing parent directory")
	cmd.Flags().StringVar(&flags.dirMode, "dir-mode", "0755", "Permissions for a created directory (octal)")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", socket.DefaultMaxAttempts, "Stop after this many probes")

	return cmd
}

// runSocket searches from path and prints the result.
func runSocket(cmd *cobra.Command, path string, flags *socketFlags) error {
	opts := cfg.SocketOptions()
	opts.Logger = Logger()
	opts.SkipDirCheck = flags.noDirCheck
	opts.CreateDir = flags.createDir

	mode, err := parseDirMode(flags.dirMode)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid --dir-mode", err)
	}
	opts.DirMode = mode

	if cmd.Flags().Changed("max-attempts") {
		opts.MaxAttempts = flags.maxAttempts
	}

	VerboseLog("Searching for a free socket from %s", path)

	found, err := socket.FindFreeSocket(path, opts)
	if err != nil {
		return searchError("no free socket found", err)
	}

	return printEndpoints(cmd.OutOrStdout(), []model.Endpoint{{Network: socket.Network, Path: found}})
}

// parseDirMode parses an octal permission string such as "0755" or "700".
func parseDirMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not an octal mode", s)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("%q exceeds 0777", s)
	}
	return os.FileMode(v), nil
}
