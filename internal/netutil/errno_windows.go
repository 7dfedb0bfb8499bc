//go:build windows

package netutil

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// Winsock error codes. syscall.EADDRINUSE on Windows is an invented value
// that the network stack never returns.
const (
	wsaeafnosupport  syscall.Errno = 10047
	wsaeaddrinuse    syscall.Errno = 10048
	wsaeaddrnotavail syscall.Errno = 10049
)

// Named pipes report an existing first instance as access denied or busy.
func isAddrInUse(err error) bool {
	return isAny(err, wsaeaddrinuse, windows.ERROR_ACCESS_DENIED, windows.ERROR_PIPE_BUSY)
}

func isAddrUnavailable(err error) bool {
	return isAny(err, wsaeaddrnotavail, wsaeafnosupport)
}
