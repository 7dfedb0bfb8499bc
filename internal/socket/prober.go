package socket

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/netutil"
	"github.com/shinji-kodama/portfinder/internal/search"
)

const (
	// DefaultMaxAttempts bounds a socket search.
	DefaultMaxAttempts = 1000

	// DefaultDirMode is used when CreateDir is set without a mode.
	DefaultDirMode os.FileMode = 0o755
)

// Options configures a Prober and FindFreeSocket.
type Options struct {
	// SkipDirCheck disables the missing-directory shortcut. A missing
	// parent directory then fails the bind like any other OS error.
	SkipDirCheck bool

	// CreateDir creates a missing parent directory with DirMode before
	// returning the base path.
	CreateDir bool

	// DirMode is the permission for created directories. Zero means
	// DefaultDirMode.
	DirMode os.FileMode

	// MaxAttempts caps the number of probes. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Logger receives one debug record per probe. Nil disables logging.
	Logger *slog.Logger
}

// Prober tests whether a listener can be created at a path.
type Prober struct {
	opts Options
}

// NewProber creates a Prober.
func NewProber(opts Options) *Prober {
	if opts.DirMode == 0 {
		opts.DirMode = DefaultDirMode
	}
	return &Prober{opts: opts}
}

// Probe classifies path.
//
//   - parent directory missing: Available, since nothing can listen there
//     (the directory is created first if CreateDir is set)
//   - listener created: Available, the listener is closed before return
//   - address in use (live listener or leftover file): InUse
//   - no socket primitive on this platform: Failed with
//     model.ErrPlatformUnsupported
//   - anything else: Failed with model.ErrBindFailure
func (p *Prober) Probe(path string) model.ProbeResult {
	// With the directory check on, a missing parent short-circuits the
	// probe. With it off, the bind below fails with ENOENT and is
	// reported as a bind failure.
	if !p.opts.SkipDirCheck {
		if res, done := p.checkDir(filepath.Dir(path)); done {
			return res
		}
	}

	listener, err := listen(path)
	if err != nil {
		// Order matters: the unsupported-platform stub returns an error
		// that is neither in-use nor an OS error.
		switch {
		case errors.Is(err, model.ErrPlatformUnsupported):
			return model.Failed(err)
		case netutil.IsAddrInUse(err):
			// A live listener, or a socket file left behind by a process
			// that exited without unlinking it. Both block the path.
			return model.InUse()
		default:
			return model.Failed(fmt.Errorf("%w: listen on %s: %w", model.ErrBindFailure, Identifier(path), err))
		}
	}
	// Closing a UNIX listener created by net.Listen also unlinks the
	// socket file, so the probe leaves nothing behind.
	_ = listener.Close()
	return model.Available()
}

// checkDir handles the parent directory. done is true when the probe is
// decided without binding.
func (p *Prober) checkDir(dir string) (res model.ProbeResult, done bool) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Nothing can listen in a directory that does not exist, so the
		// candidate is free. CreateDir prepares the directory for the
		// caller's own bind.
		if p.opts.CreateDir {
			if err := os.MkdirAll(dir, p.opts.DirMode); err != nil {
				return model.Failed(fmt.Errorf("%w: creating socket directory %s: %w", model.ErrBindFailure, dir, err)), true
			}
		}
		return model.Available(), true
	case err != nil:
		return model.Failed(fmt.Errorf("%w: inspecting socket directory %s: %w", model.ErrBindFailure, dir, err)), true
	case !info.IsDir():
		// The parent is a regular file; no candidate under it can ever
		// be bound, so advancing would be pointless.
		return model.Failed(fmt.Errorf("%w: %s is not a directory", model.ErrBindFailure, dir)), true
	}
	return model.ProbeResult{}, false
}

// FindFreeSocket returns the identifier of the first free candidate
// derived from path. An empty path means DefaultPath().
//
// On UNIX the identifier is the path itself; on Windows it is the named
// pipe for that path (see Identifier). A missing parent directory makes
// path itself the answer, with no suffix applied.
func FindFreeSocket(path string, opts Options) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	// Unlike ports, socket names have no upper end: NextPath always
	// produces another candidate. The attempt limit is the only bound.
	limit := opts.MaxAttempts
	if limit == 0 {
		limit = DefaultMaxAttempts
	}

	s := search.Search[string]{
		Prober: NewProber(opts),
		Next: func(c string) (string, error) {
			return NextPath(c), nil
		},
		Limit:  limit,
		Logger: opts.Logger,
	}

	found, err := s.Run(path)
	if err != nil {
		return "", err
	}
	return Identifier(found), nil
}
