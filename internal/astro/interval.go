package astro

import (
	"errors"
	"time"
)

// ErrEmptyInterval is returned when an interval would not have start < end.
var ErrEmptyInterval = errors.New("interval start must precede end")

// Interval is the half-open time range [Start, End).
type Interval struct {
	Start Instant
	End   Instant
}

// NewInterval returns [start, end), rejecting empty or inverted ranges.
func NewInterval(start, end Instant) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrEmptyInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns End-Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Contains reports whether Start <= at < End.
func (iv Interval) Contains(at Instant) bool {
	return !at.Before(iv.Start) && at.Before(iv.End)
}
