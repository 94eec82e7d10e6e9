// Package discrete finds the instants at which a time-dependent state
// changes. A state function is sampled on a coarse grid, brackets whose
// endpoints disagree are narrowed by bisection, and the transitions are
// returned in chronological order.
//
// Changes that start and revert inside one sampling gap are invisible to
// the search, so the step must be shorter than the smallest expected gap
// between transitions.
package discrete

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/lunas/internal/astro"
)

const (
	// DefaultStep is adequate for Sun and Moon rise/set.
	DefaultStep = 10 * time.Minute

	// DefaultEpsilon is the default bracket width below which bisection stops.
	DefaultEpsilon = time.Second

	// DefaultMaxBisections bounds narrowing of a single bracket.
	DefaultMaxBisections = 64

	// DefaultMaxSamples bounds the coarse grid.
	DefaultMaxSamples = 100_000
)

var (
	// ErrInvalidOptions is returned for a non-positive step or epsilon.
	ErrInvalidOptions = errors.New("invalid search options")

	// ErrTooManySamples is returned when the span needs more coarse samples
	// than Options.MaxSamples allows.
	ErrTooManySamples = errors.New("search span needs too many samples")
)

// StateFunc reports the state at an instant.
type StateFunc[S comparable] func(at astro.Instant) (S, error)

// Options controls the search resolution and its work bounds.
type Options struct {
	Step          time.Duration // coarse sampling interval
	Epsilon       time.Duration // bisection stops once the bracket is narrower
	MaxBisections int           // 0 means DefaultMaxBisections
	MaxSamples    int           // 0 means DefaultMaxSamples
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		Step:          DefaultStep,
		Epsilon:       DefaultEpsilon,
		MaxBisections: DefaultMaxBisections,
		MaxSamples:    DefaultMaxSamples,
	}
}

// Validate checks the options, returning an error wrapping ErrInvalidOptions.
func (o Options) Validate() error {
	switch {
	case o.Step <= 0:
		return fmt.Errorf("%w: step %s must be positive", ErrInvalidOptions, o.Step)
	case o.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon %s must be positive", ErrInvalidOptions, o.Epsilon)
	case o.MaxBisections < 0:
		return fmt.Errorf("%w: max bisections %d is negative", ErrInvalidOptions, o.MaxBisections)
	case o.MaxSamples < 0:
		return fmt.Errorf("%w: max samples %d is negative", ErrInvalidOptions, o.MaxSamples)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MaxBisections == 0 {
		o.MaxBisections = DefaultMaxBisections
	}
	if o.MaxSamples == 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	return o
}

// Transition is a change of state. At is the earliest instant observed in
// the new state; the change itself lies less than Epsilon before it.
type Transition[S comparable] struct {
	At   astro.Instant
	From S
	To   S
}

// Find returns every transition of f inside span, in chronological order.
// Transitions at or after span.End are dropped. No transitions is an empty
// result, not an error. Errors from f abort the search.
func Find[S comparable](f StateFunc[S], span astro.Interval, opts Options) ([]Transition[S], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	if !span.Start.Before(span.End) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptions, astro.ErrEmptyInterval)
	}

	n := int(span.Duration()/opts.Step) + 2
	if span.Duration()%opts.Step == 0 {
		n--
	}
	if n > opts.MaxSamples {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySamples, n, opts.MaxSamples)
	}

	eval := func(at astro.Instant) (S, error) {
		s, err := f(at)
		if err != nil {
			return s, fmt.Errorf("state at %s: %w", at, err)
		}
		return s, nil
	}

	var out []Transition[S]

	prevAt := span.Start
	prev, err := eval(prevAt)
	if err != nil {
		return nil, err
	}

	for i := 1; i < n; i++ {
		at := span.Start.Add(time.Duration(i) * opts.Step)
		if at.After(span.End) {
			at = span.End
		}

		cur, err := eval(at)
		if err != nil {
			return nil, err
		}

		if cur != prev {
			tr, err := bisect(eval, prevAt, at, prev, cur, opts)
			if err != nil {
				return nil, err
			}
			if tr.At.Before(span.End) {
				out = append(out, tr)
			}
		}

		prevAt, prev = at, cur
	}

	return out, nil
}

// bisect narrows [lo, hi] where f(lo) == from and f(hi) != from to the
// first departure from the from state.
func bisect[S comparable](eval StateFunc[S], lo, hi astro.Instant, from, to S, opts Options) (Transition[S], error) {
	for iter := 0; hi.Sub(lo) >= opts.Epsilon && iter < opts.MaxBisections; iter++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		s, err := eval(mid)
		if err != nil {
			return Transition[S]{}, err
		}
		if s == from {
			lo = mid
		} else {
			hi, to = mid, s
		}
	}

	return Transition[S]{
		At:   hi,
		From: from,
		To:   to,
	}, nil
}
