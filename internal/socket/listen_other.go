//go:build !unix && !windows

package socket

import (
	"fmt"
	"io"
	"runtime"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// Network is the kind of endpoint FindFreeSocket would return.
const Network = model.NetworkUnix

// Identifier returns path unchanged.
func Identifier(path string) string {
	return path
}

func listen(string) (io.Closer, error) {
	return nil, fmt.Errorf("%w: no UNIX domain sockets or named pipes on %s", model.ErrPlatformUnsupported, runtime.GOOS)
}
