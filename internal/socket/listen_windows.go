//go:build windows

package socket

import (
	"io"
	"strings"

	"github.com/Microsoft/go-winio"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// Network is the kind of endpoint FindFreeSocket returns on this platform.
const Network = model.NetworkPipe

// pipePrefix is the namespace every named pipe lives in.
const pipePrefix = `\\.\pipe\`

// Identifier returns the named pipe a caller binds to for path.
func Identifier(path string) string {
	if strings.HasPrefix(path, pipePrefix) {
		return path
	}
	return pipePrefix + path
}

// listen creates the first instance of the named pipe for path. A second
// first-instance creation fails with ERROR_ACCESS_DENIED, which netutil
// classifies as in use.
func listen(path string) (io.Closer, error) {
	return winio.ListenPipe(Identifier(path), nil)
}
