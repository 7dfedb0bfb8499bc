//go:build !unix && !windows

package netutil

import "strings"

// Platforms such as plan9 and js report bind errors as plain strings.

func isAddrInUse(err error) bool {
	return strings.Contains(err.Error(), "address already in use")
}

func isAddrUnavailable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "cannot assign requested address") ||
		strings.Contains(msg, "address family not supported")
}
