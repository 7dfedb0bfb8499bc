//go:build unix

package socket

import (
	"io"
	"net"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// Network is the kind of endpoint FindFreeSocket returns on this platform.
const Network = model.NetworkUnix

// Identifier returns the address a caller binds to for path.
func Identifier(path string) string {
	return path
}

// listen creates a UNIX domain socket at path. Closing the listener
// unlinks the socket file.
func listen(path string) (io.Closer, error) {
	return net.Listen("unix", path)
}
