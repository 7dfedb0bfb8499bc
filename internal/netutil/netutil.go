// Package netutil classifies errors returned by bind/listen calls.
//
// Both probers need to tell "somebody already holds this address" apart
// from every other failure, and the default-host port prober additionally
// needs to recognise addresses that simply do not exist on this machine
// (for example "::1" with IPv6 disabled). The errno values differ per
// platform, so the comparisons live in errno_*.go.
package netutil

import "errors"

// IsAddrInUse reports whether err means the address is already bound.
func IsAddrInUse(err error) bool {
	return err != nil && isAddrInUse(err)
}

// IsAddrUnavailable reports whether err means the address or its family
// is not configured on this host, as opposed to being refused.
func IsAddrUnavailable(err error) bool {
	return err != nil && isAddrUnavailable(err)
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
