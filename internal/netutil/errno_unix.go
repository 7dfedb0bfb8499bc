//go:build unix

package netutil

import "syscall"

func isAddrInUse(err error) bool {
	return isAny(err, syscall.EADDRINUSE)
}

func isAddrUnavailable(err error) bool {
	return isAny(err, syscall.EADDRNOTAVAIL, syscall.EAFNOSUPPORT)
}
