package port

import (
	"fmt"
	"log/slog"

	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/search"
)

const (
	// DefaultBasePort is where a search starts when the caller does not
	// choose a base port.
	DefaultBasePort = 8000

	// DefaultMaxPort is the highest port a search will try.
	DefaultMaxPort = model.MaxPort
)

// Options configures FindFreePort and FindFreePorts.
type Options struct {
	// Host to probe. Empty probes DefaultHosts.
	Host string

	// BasePort is the first candidate. Zero asks the OS for an ephemeral
	// port and searches upward from there. The OS picks from its own
	// ephemeral range (commonly 32768-60999 on Linux, 49152-65535 on
	// macOS and Windows), so an assigned port above MaxPort is requested
	// again a few times; if none lands in range the search fails with
	// model.ErrPortOutOfRange. Use an explicit BasePort when MaxPort is
	// below the OS range.
	BasePort int

	// MaxPort is the last candidate. Zero means DefaultMaxPort.
	MaxPort int

	// MaxAttempts caps the number of probes. Zero means the search is
	// bounded only by MaxPort.
	MaxAttempts int

	// Reserved ports are treated as in use without probing, e.g. ports
	// published by stopped Docker containers that will be rebound on
	// restart.
	Reserved []int

	// Logger receives one debug record per probe. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns Options that start at DefaultBasePort on the
// default host set.
func DefaultOptions() Options {
	return Options{BasePort: DefaultBasePort, MaxPort: DefaultMaxPort}
}

// Allocator combines a Scanner with a set of reserved ports.
//
// Reserved ports cover what the OS cannot see: a port published by a
// stopped container is unbound now but will conflict as soon as the
// container starts again.
type Allocator struct {
	scanner  *Scanner
	reserved map[int]struct{}

	// ephemeral asks the OS for a port. It is the scanner's Ephemeral
	// outside tests.
	ephemeral func() (int, error)
}

// ephemeralAttempts bounds how often an OS-assigned port above MaxPort is
// requested again.
const ephemeralAttempts = 8

// NewAllocator creates a new Allocator with the given Scanner.
// The scanner must not be nil.
func NewAllocator(scanner *Scanner) *Allocator {
	return &Allocator{
		scanner:   scanner,
		reserved:  make(map[int]struct{}),
		ephemeral: scanner.Ephemeral,
	}
}

// SetReserved registers ports the allocator must never return.
func (a *Allocator) SetReserved(ports []int) {
	a.reserved = make(map[int]struct{}, len(ports))
	for _, p := range ports {
		a.reserved[p] = struct{}{}
	}
}

// Probe classifies port, checking the reserved set before the OS.
func (a *Allocator) Probe(port int) model.ProbeResult {
	if _, ok := a.reserved[port]; ok {
		return model.InUse()
	}
	return a.scanner.Probe(port)
}

// FindAvailablePort scans [startPort, endPort] upward and returns the
// first available port. The range must already be validated.
func (a *Allocator) FindAvailablePort(startPort, endPort, maxAttempts int, logger *slog.Logger) (int, error) {
	s := search.Search[int]{
		Prober: a,
		Next: func(p int) (int, error) {
			if p+1 > endPort {
				return 0, fmt.Errorf("%w: no available tcp port found in range %d-%d",
					model.ErrExhausted, startPort, endPort)
			}
			return p + 1, nil
		},
		Limit:  maxAttempts,
		Logger: logger,
	}
	return s.Run(startPort)
}

// FindFreePort returns the first free TCP port at or above opts.BasePort.
//
// Errors wrap model.ErrPortOutOfRange for an invalid range,
// model.ErrExhausted when every port up to MaxPort is taken, and
// model.ErrBindFailure when the OS refuses a bind for any reason other
// than "in use". Only in-use ports are skipped.
func FindFreePort(opts Options) (int, error) {
	startPort, endPort, err := resolveRange(opts)
	if err != nil {
		return 0, err
	}

	a := NewAllocator(NewScanner(opts.Host))
	a.SetReserved(opts.Reserved)

	if startPort == 0 {
		startPort, err = a.ephemeralStart(endPort)
		if err != nil {
			return 0, err
		}
	}

	if opts.Logger != nil {
		opts.Logger.Debug("searching for tcp port",
			"hosts", a.scanner.Hosts(),
			"start", startPort,
			"end", endPort,
			"reserved", len(a.reserved),
		)
	}

	return a.FindAvailablePort(startPort, endPort, opts.MaxAttempts, opts.Logger)
}

// ephemeralStart asks the OS for a port until one is at or below
// endPort. The OS range does not depend on endPort, so after
// ephemeralAttempts misses the range is treated as unreachable.
func (a *Allocator) ephemeralStart(endPort int) (int, error) {
	var last int
	for i := 0; i < ephemeralAttempts; i++ {
		p, err := a.ephemeral()
		if err != nil {
			return 0, err
		}
		if p <= endPort {
			return p, nil
		}
		last = p
	}
	return 0, fmt.Errorf("%w: ephemeral ports assigned by the OS (last %d) are above max port %d; set a base port",
		model.ErrPortOutOfRange, last, endPort)
}

// FindFreePorts returns count free ports in ascending order. Each search
// starts one above the previous result, so the ports are distinct.
func FindFreePorts(count int, opts Options) ([]int, error) {
	if count < 1 {
		return nil, fmt.Errorf("port count must be at least 1, got %d", count)
	}

	ports := make([]int, 0, count)
	for len(ports) < count {
		port, err := FindFreePort(opts)
		if err != nil {
			return nil, fmt.Errorf("finding port %d of %d: %w", len(ports)+1, count, err)
		}
		ports = append(ports, port)

		if len(ports) < count && port >= resolvedMax(opts) {
			return nil, fmt.Errorf("%w: found %d of %d ports before reaching max port %d",
				model.ErrExhausted, len(ports), count, resolvedMax(opts))
		}
		opts.BasePort = port + 1
	}
	return ports, nil
}

func resolvedMax(opts Options) int {
	if opts.MaxPort == 0 {
		return DefaultMaxPort
	}
	return opts.MaxPort
}

// resolveRange validates the search bounds.
func resolveRange(opts Options) (int, int, error) {
	endPort := resolvedMax(opts)
	if err := model.ValidatePort(opts.BasePort); err != nil {
		return 0, 0, fmt.Errorf("base port: %w", err)
	}
	if err := model.ValidatePort(endPort); err != nil {
		return 0, 0, fmt.Errorf("max port: %w", err)
	}
	if opts.BasePort > endPort {
		return 0, 0, fmt.Errorf("%w: base port %d is above max port %d",
			model.ErrPortOutOfRange, opts.BasePort, endPort)
	}
	return opts.BasePort, endPort, nil
}
