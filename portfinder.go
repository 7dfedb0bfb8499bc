// Package portfinder finds a free TCP port or UNIX socket path on the
// local host.
//
// Candidates are probed one at a time: a listener is created, closed, and
// the first candidate that could be bound is returned. Ports count upward
// from a base port; socket paths get an increasing number before their
// extension (app.sock, app1.sock, app2.sock).
//
// A returned endpoint was free when it was probed. Nothing holds it
// afterwards, so another process may take it before the caller binds it.
package portfinder

import (
	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/port"
	"github.com/shinji-kodama/portfinder/internal/socket"
)

type (
	// PortOptions configures FindPort and FindPorts.
	PortOptions = port.Options

	// SocketOptions configures FindSocket.
	SocketOptions = socket.Options
)

// Error kinds returned by the finders. Test with errors.Is.
var (
	ErrPortOutOfRange      = model.ErrPortOutOfRange
	ErrBindFailure         = model.ErrBindFailure
	ErrExhausted           = model.ErrExhausted
	ErrPlatformUnsupported = model.ErrPlatformUnsupported
)

// DefaultPortOptions returns options starting at port 8000 on all local
// hosts.
func DefaultPortOptions() PortOptions {
	return port.DefaultOptions()
}

// FindPort returns the first free TCP port at or above opts.BasePort.
func FindPort(opts PortOptions) (int, error) {
	return port.FindFreePort(opts)
}

// FindPorts returns count distinct free TCP ports in ascending order.
func FindPorts(count int, opts PortOptions) ([]int, error) {
	return port.FindFreePorts(count, opts)
}

// FindSocket returns the first free socket path derived from path, or
// the named pipe for it on Windows. An empty path starts from a file in
// the temp directory.
func FindSocket(path string, opts SocketOptions) (string, error) {
	return socket.FindFreeSocket(path, opts)
}
