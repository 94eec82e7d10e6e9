package almanac

import (
	"fmt"
	"time"

	"github.com/litescript/lunas/internal/astro"
)

// DefaultTraceStep is the time between altitude samples.
const DefaultTraceStep = 15 * time.Minute

// AltitudeSample is a single altitude measurement.
type AltitudeSample struct {
	At     astro.Instant
	AltDeg float64 // degrees above horizon
}

// AltitudeTrace contains altitude samples of one body over a window.
type AltitudeTrace struct {
	Body    astro.Body
	Start   astro.Instant
	End     astro.Instant
	Samples []AltitudeSample
}

// ComputeAltitudeTrace samples body's altitude every step across span,
// including both ends.
func ComputeAltitudeTrace(frame *astro.Frame, body astro.Body, span astro.Interval, step time.Duration) (*AltitudeTrace, error) {
	if step <= 0 {
		return nil, fmt.Errorf("altitude trace: step %s must be positive", step)
	}

	trace := &AltitudeTrace{
		Body:    body,
		Start:   span.Start,
		End:     span.End,
		Samples: make([]AltitudeSample, 0, int(span.Duration()/step)+1),
	}

	for at := span.Start; !at.After(span.End); at = at.Add(step) {
		alt, err := frame.Altitude(body, at)
		if err != nil {
			return nil, fmt.Errorf("altitude trace: %w", err)
		}
		trace.Samples = append(trace.Samples, AltitudeSample{At: at, AltDeg: alt})
	}

	return trace, nil
}

// Nearest returns the sample closest to at, or nil if there are none.
func (t *AltitudeTrace) Nearest(at astro.Instant) *AltitudeSample {
	if t == nil || len(t.Samples) == 0 {
		return nil
	}

	var closest *AltitudeSample
	var minDelta time.Duration = 1<<63 - 1 // max duration

	for i := range t.Samples {
		delta := t.Samples[i].At.Sub(at)
		if delta < 0 {
			delta = -delta
		}
		if delta < minDelta {
			minDelta = delta
			closest = &t.Samples[i]
		}
	}

	return closest
}

// Peak returns the highest sample, or nil if there are none.
func (t *AltitudeTrace) Peak() *AltitudeSample {
	if t == nil || len(t.Samples) == 0 {
		return nil
	}
	peak := &t.Samples[0]
	for i := range t.Samples {
		if t.Samples[i].AltDeg > peak.AltDeg {
			peak = &t.Samples[i]
		}
	}
	return peak
}

// Values returns the altitudes in sample order.
func (t *AltitudeTrace) Values() []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.AltDeg
	}
	return out
}
