package model

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Outcome classifies the result of probing one candidate.
//
// Only OutcomeInUse is recoverable: the search driver advances to the next
// candidate. The other two terminate a search.
type Outcome int

const (
	// OutcomeAvailable means the candidate could be bound and was released.
	OutcomeAvailable Outcome = iota

	// OutcomeInUse means the OS reported the candidate as already bound.
	OutcomeInUse

	// OutcomeError means the probe failed for any other reason
	// (permission denied, invalid address, unsupported platform).
	OutcomeError
)

// String returns the lower-case name of the outcome, used in log records.
func (o Outcome) String() string {
	switch o {
	case OutcomeAvailable:
		return "available"
	case OutcomeInUse:
		return "in-use"
	case OutcomeError:
		return "error"
	default:
		return "unknown(" + strconv.Itoa(int(o)) + ")"
	}
}

// ProbeResult is the outcome of testing one candidate. Err is set only
// when Outcome is OutcomeError.
type ProbeResult struct {
	Outcome Outcome
	Err     error
}

// Available returns a ProbeResult for a candidate that could be bound.
func Available() ProbeResult {
	return ProbeResult{Outcome: OutcomeAvailable}
}

// InUse returns a ProbeResult for a candidate that is already bound.
func InUse() ProbeResult {
	return ProbeResult{Outcome: OutcomeInUse}
}

// Failed returns a ProbeResult carrying a terminal error.
// A nil err is replaced with ErrBindFailure so callers never see an
// OutcomeError without a reason.
func Failed(err error) ProbeResult {
	if err == nil {
		err = ErrBindFailure
	}
	return ProbeResult{Outcome: OutcomeError, Err: err}
}

// Error kinds a search can end with. They are always wrapped with context
// (and usually the underlying OS error), so match them with errors.Is.
var (
	// ErrPortOutOfRange: the base port, the upper bound, or an incremented
	// port lies outside [MinPort, MaxPort].
	ErrPortOutOfRange = errors.New("port out of range")

	// ErrBindFailure: the OS refused the bind for a reason other than
	// "address already in use".
	ErrBindFailure = errors.New("bind failure")

	// ErrExhausted: the search space ran out before an available
	// candidate was found.
	ErrExhausted = errors.New("search exhausted")

	// ErrPlatformUnsupported: the platform has no usable local-socket
	// primitive (neither UNIX domain sockets nor named pipes).
	ErrPlatformUnsupported = errors.New("platform unsupported")
)

const (
	// MinPort and MaxPort bound the valid TCP port space.
	MinPort = 0
	MaxPort = 65535
)

// ValidatePort reports ErrPortOutOfRange if port is outside [MinPort, MaxPort].
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%w: %d (valid: %d-%d)", ErrPortOutOfRange, port, MinPort, MaxPort)
	}
	return nil
}

// Network names the kind of endpoint that was found.
type Network string

const (
	// NetworkTCP is a TCP host:port endpoint.
	NetworkTCP Network = "tcp"

	// NetworkUnix is a UNIX domain socket path.
	NetworkUnix Network = "unix"

	// NetworkPipe is a Windows named pipe.
	NetworkPipe Network = "pipe"
)

// String returns the string representation of Network.
func (n Network) String() string {
	return string(n)
}

// Endpoint is a free endpoint reported back to a caller of the CLI.
// For TCP endpoints Host and Port are set; for sockets and pipes only Path.
type Endpoint struct {
	Network Network `json:"network"`
	Host    string  `json:"host,omitempty"`
	Port    int     `json:"port,omitempty"`
	Path    string  `json:"path,omitempty"`
}

// String returns the identifier a caller would bind to:
// "host:port" for TCP (":port" when bound to every default host) and the
// path or pipe name otherwise.
func (e Endpoint) String() string {
	if e.Network == NetworkTCP {
		return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	}
	return e.Path
}

// ExitCode defines the process exit codes of the portfinder CLI.
// These codes allow scripts and CI systems to tell why no endpoint was found.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitExhausted indicates the search ran out of candidates.
	ExitExhausted ExitCode = 2

	// ExitPortOutOfRange indicates an invalid base or maximum port.
	ExitPortOutOfRange ExitCode = 3

	// ExitBindFailure indicates the OS refused a bind for a reason other
	// than "in use" (e.g. permission denied).
	ExitBindFailure ExitCode = 4

	// ExitPlatformUnsupported indicates socket probing is not possible here.
	ExitPlatformUnsupported ExitCode = 5

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 6

	// ExitInvalidConfig indicates the config file or environment is invalid.
	ExitInvalidConfig ExitCode = 7
)

// ExitCodeFor maps a search error to its exit code by error kind.
// Unknown errors map to ExitGeneralError.
func ExitCodeFor(err error) ExitCode {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrPlatformUnsupported):
		return ExitPlatformUnsupported
	case errors.Is(err, ErrPortOutOfRange):
		return ExitPortOutOfRange
	case errors.Is(err, ErrExhausted):
		return ExitExhausted
	case errors.Is(err, ErrBindFailure):
		return ExitBindFailure
	default:
		return ExitGeneralError
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
