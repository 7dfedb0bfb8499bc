package port

import (
	"fmt"
	"net"
	"strconv"

	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/netutil"
)

// DefaultHosts is the host set probed when no host is configured. A port
// counts as free only if it can be bound on each of these addresses that
// exists on this machine, so a server listening on any one of them is
// detected.
var DefaultHosts = []string{"0.0.0.0", "127.0.0.1", "::", "::1"}

// Scanner checks whether specific TCP ports are available on the host.
//
// It asks the operating system directly via net.Listen rather than parsing
// /proc/net/* or shelling out to `lsof`/`ss`, which may require elevated
// permissions.
type Scanner struct {
	hosts []string

	// skipUnavailable is set for the default host set only: an address
	// that does not exist here (IPv6 disabled, no loopback alias) is
	// ignored instead of failing the probe. An explicit host is never
	// skipped.
	skipUnavailable bool
}

// NewScanner creates a Scanner bound to host. An empty host selects
// DefaultHosts.
func NewScanner(host string) *Scanner {
	if host == "" {
		return &Scanner{hosts: DefaultHosts, skipUnavailable: true}
	}
	return &Scanner{hosts: []string{host}}
}

// Hosts returns the addresses this Scanner probes.
func (s *Scanner) Hosts() []string {
	return s.hosts
}

// Probe attempts to listen on port for every host and releases each
// listener immediately.
//
// Returns InUse as soon as one host reports the address bound, and Failed
// wrapping model.ErrBindFailure for any other OS refusal (permission
// denied, invalid address). Ports outside [0, 65535] fail with
// model.ErrPortOutOfRange without touching the network.
//
// Hosts are checked separately: a server on 127.0.0.1:8000 does not stop a
// bind on 0.0.0.0:8000 on BSD-derived stacks (Go sets SO_REUSEADDR), yet a
// client connecting to localhost would still reach that server.
//
// Parameters:
//   - port: the port number to check (0-65535)
//
// Returns the classification; the listeners are always closed.
func (s *Scanner) Probe(port int) model.ProbeResult {
	if err := model.ValidatePort(port); err != nil {
		return model.Failed(err)
	}

	// bound counts hosts that accepted the listener. Skipped hosts do not
	// count, so a machine with none of the default hosts is an error
	// rather than a false Available.
	bound := 0
	for _, host := range s.hosts {
		// JoinHostPort adds the brackets IPv6 literals need ("[::1]:8000").
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			switch {
			case netutil.IsAddrInUse(err):
				// One busy host is enough: the remaining hosts are not
				// probed.
				return model.InUse()
			case s.skipUnavailable && netutil.IsAddrUnavailable(err):
				// IPv6 disabled, or no such local address.
				continue
			default:
				return model.Failed(fmt.Errorf("%w: listen on %s: %w", model.ErrBindFailure, addr, err))
			}
		}
		// Close right away; only the bind result was needed. The error
		// is ignored since the port is released either way.
		_ = listener.Close()
		bound++
	}

	if bound == 0 {
		return model.Failed(fmt.Errorf("%w: none of the hosts %v exist on this machine", model.ErrBindFailure, s.hosts))
	}
	return model.Available()
}

// IsPortAvailable reports whether Probe classifies port as available.
func (s *Scanner) IsPortAvailable(port int) bool {
	return s.Probe(port).Outcome == model.OutcomeAvailable
}

// Ephemeral asks the OS for a free port by listening on port 0 of the
// first usable host.
func (s *Scanner) Ephemeral() (int, error) {
	for _, host := range s.hosts {
		listener, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
		if err != nil {
			if s.skipUnavailable && netutil.IsAddrUnavailable(err) {
				continue
			}
			return 0, fmt.Errorf("%w: listening on %s to acquire port: %w", model.ErrBindFailure, host, err)
		}
		port := listener.Addr().(*net.TCPAddr).Port
		_ = listener.Close()
		return port, nil
	}
	return 0, fmt.Errorf("%w: none of the hosts %v exist on this machine", model.ErrBindFailure, s.hosts)
}
