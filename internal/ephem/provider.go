// Package ephem provides geocentric Sun and Moon positions.
package ephem

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/lunas/internal/astro"
)

// ErrOutOfRange is the sentinel wrapped by every DataRangeError.
var ErrOutOfRange = errors.New("instant outside ephemeris coverage")

// ErrUnknownBody is returned for bodies a provider cannot place.
var ErrUnknownBody = errors.New("unsupported body")

// DataRangeError reports a position request outside a provider's coverage.
type DataRangeError struct {
	Provider string
	Body     astro.Body
	At       astro.Instant
	Coverage astro.Interval
}

func (e *DataRangeError) Error() string {
	return fmt.Sprintf("%s: %s at %s outside coverage [%s, %s)",
		e.Provider, e.Body, e.At, e.Coverage.Start, e.Coverage.End)
}

// Unwrap returns ErrOutOfRange.
func (e *DataRangeError) Unwrap() error { return ErrOutOfRange }

// Provider is a source of geocentric positions (km, equator of date).
// Implementations are immutable after construction and safe for
// concurrent use.
type Provider interface {
	astro.Ephemeris

	// Name returns the provider name for display/logging.
	Name() string

	// Coverage returns the span positions are available for.
	Coverage() astro.Interval
}

// checkCoverage returns a DataRangeError if at is outside cov.
func checkCoverage(name string, cov astro.Interval, body astro.Body, at astro.Instant) error {
	if cov.Contains(at) {
		return nil
	}
	return &DataRangeError{Provider: name, Body: body, At: at, Coverage: cov}
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeMeeus    Mode = iota // Analytic series (default)
	ModeHorizons             // Table loaded from JPL Horizons
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMeeus:
		return "meeus"
	case ModeHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "meeus", "":
		return ModeMeeus, nil
	case "horizons":
		return ModeHorizons, nil
	default:
		return ModeMeeus, fmt.Errorf("unknown ephemeris source %q", s)
	}
}

// DefaultCoverage is the span the analytic provider serves by default.
func DefaultCoverage() astro.Interval {
	return astro.Interval{
		Start: astro.At(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)),
		End:   astro.At(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}
