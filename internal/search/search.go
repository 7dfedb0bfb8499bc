// Package search implements the sequential search driver shared by the
// port and socket finders.
//
// A search starts from a base candidate, probes it, and advances one
// candidate at a time until a probe reports the candidate available, a
// probe fails, or the candidate space is exhausted:
//
//	probe(c) == Available -> return c
//	probe(c) == InUse     -> c = next(c), repeat
//	probe(c) == Error     -> return the probe error unchanged
//
// Probes run strictly one after another. Nothing is shared between two
// Run calls, so independent callers may search concurrently.
package search

import (
	"fmt"
	"log/slog"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// Prober tests a single candidate. Implementations bind, release and
// classify; they must not hold the candidate after returning.
type Prober[C any] interface {
	Probe(candidate C) model.ProbeResult
}

// ProbeFunc adapts a plain function to the Prober interface.
type ProbeFunc[C any] func(candidate C) model.ProbeResult

// Probe calls f(candidate).
func (f ProbeFunc[C]) Probe(candidate C) model.ProbeResult {
	return f(candidate)
}

// NextFunc derives the candidate after c. It returns an error (normally
// wrapping model.ErrExhausted) when c was the last candidate.
type NextFunc[C any] func(c C) (C, error)

// State is the mutable state of one running search. It is created by Run
// and discarded when Run returns.
type State[C any] struct {
	// Current is the candidate being probed.
	Current C

	// Attempts counts probes made so far, including the current one.
	Attempts int

	// Limit caps Attempts. Zero means the search is bounded only by Next.
	Limit int
}

// exhausted reports whether the attempt budget is spent.
func (s *State[C]) exhausted() bool {
	return s.Limit > 0 && s.Attempts >= s.Limit
}

// Search drives a Prober from a base candidate.
type Search[C any] struct {
	// Prober classifies each candidate.
	Prober Prober[C]

	// Next derives the following candidate after an in-use probe.
	Next NextFunc[C]

	// Limit caps the number of probes; zero means unlimited.
	Limit int

	// Logger receives one debug record per probe. Nil disables logging.
	Logger *slog.Logger
}

// Run probes start, then successive candidates, and returns the first
// available one.
//
// Only an in-use result advances the search. A probe error is returned
// verbatim: a permission or range error on one candidate will repeat on
// the next, so the caller sees the first one.
//
// The search ends in one of four ways:
//   - a probe reports Available: the candidate is returned
//   - a probe reports Error: its error is returned unchanged
//   - Limit probes were made: an error wrapping model.ErrExhausted
//   - Next has no further candidate: Next's error is returned
//
// Every candidate is probed exactly once, in the order Next produces them.
func (s Search[C]) Run(start C) (C, error) {
	var zero C

	if s.Prober == nil || s.Next == nil {
		return zero, fmt.Errorf("search: prober and next function are required")
	}

	// A nil logger is replaced instead of checked on every probe.
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	state := &State[C]{Current: start, Limit: s.Limit}
	for {
		// Count the attempt before probing so the limit check below
		// includes the probe that just ran.
		state.Attempts++
		res := s.Prober.Probe(state.Current)
		logger.Debug("probe",
			"candidate", state.Current,
			"attempt", state.Attempts,
			"outcome", res.Outcome.String(),
		)

		switch res.Outcome {
		case model.OutcomeAvailable:
			return state.Current, nil
		case model.OutcomeInUse:
			// advance below
		default:
			// OutcomeError, or an Outcome value this driver does not
			// know. Failed substitutes ErrBindFailure for a nil error so
			// a misbehaving prober cannot end the search with (zero, nil).
			return zero, model.Failed(res.Err).Err
		}

		// The budget is checked after an in-use result only: a search
		// whose last allowed probe succeeds still returns that candidate.
		if state.exhausted() {
			return zero, fmt.Errorf("%w: no available candidate after %d attempts (last tried %v)",
				model.ErrExhausted, state.Attempts, state.Current)
		}

		// Next decides where the candidate space ends (MaxPort for
		// ports). Its error already wraps model.ErrExhausted.
		next, err := s.Next(state.Current)
		if err != nil {
			return zero, err
		}
		state.Current = next
	}
}
