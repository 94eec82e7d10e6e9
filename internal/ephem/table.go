package ephem

import (
	"errors"
	"fmt"
	"sort"

	"github.com/litescript/lunas/internal/astro"
)

// lagrangePoints is the number of samples used per interpolation.
const lagrangePoints = 4

// Sample is one tabulated geocentric position.
type Sample struct {
	At  astro.Instant
	Pos astro.Vec3
}

// series is a time-ordered column of samples for one body.
type series struct {
	jd  []float64
	pos []astro.Vec3
}

// TableProvider interpolates tabulated Sun and Moon vectors. Its coverage
// is the span shared by all tabulated bodies.
type TableProvider struct {
	name     string
	bodies   map[astro.Body]series
	coverage astro.Interval
}

// NewTableProvider builds a provider from per-body samples. Samples are
// sorted by time; each body needs at least two distinct instants.
func NewTableProvider(name string, samples map[astro.Body][]Sample) (*TableProvider, error) {
	if len(samples) == 0 {
		return nil, errors.New("table provider: no samples")
	}

	p := &TableProvider{name: name, bodies: make(map[astro.Body]series, len(samples))}
	first := true

	for body, ss := range samples {
		if len(ss) < 2 {
			return nil, fmt.Errorf("table provider: %s has %d samples, need at least 2", body, len(ss))
		}

		sorted := append([]Sample(nil), ss...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

		s := series{jd: make([]float64, len(sorted)), pos: make([]astro.Vec3, len(sorted))}
		for i, smp := range sorted {
			if i > 0 && !sorted[i-1].At.Before(smp.At) {
				return nil, fmt.Errorf("table provider: duplicate %s sample at %s", body, smp.At)
			}
			s.jd[i] = smp.At.JD()
			s.pos[i] = smp.Pos
		}
		p.bodies[body] = s

		span := astro.Interval{Start: sorted[0].At, End: sorted[len(sorted)-1].At}
		if first {
			p.coverage = span
			first = false
			continue
		}
		if span.Start.After(p.coverage.Start) {
			p.coverage.Start = span.Start
		}
		if span.End.Before(p.coverage.End) {
			p.coverage.End = span.End
		}
	}

	if !p.coverage.Start.Before(p.coverage.End) {
		return nil, errors.New("table provider: bodies share no common span")
	}
	return p, nil
}

// Name implements Provider.
func (p *TableProvider) Name() string { return p.name }

// Coverage implements Provider.
func (p *TableProvider) Coverage() astro.Interval { return p.coverage }

// Position implements astro.Ephemeris.
func (p *TableProvider) Position(body astro.Body, at astro.Instant) (astro.Vec3, error) {
	if err := checkCoverage(p.name, p.coverage, body, at); err != nil {
		return astro.Vec3{}, err
	}
	if body == astro.Earth {
		return astro.Vec3{}, nil
	}

	s, ok := p.bodies[body]
	if !ok {
		return astro.Vec3{}, fmt.Errorf("%s: %w: %s", p.name, ErrUnknownBody, body)
	}
	return s.interpolate(at.JD()), nil
}

// interpolate evaluates the Lagrange polynomial through the samples
// surrounding jd.
func (s series) interpolate(jd float64) astro.Vec3 {
	n := len(s.jd)
	k := min(lagrangePoints, n)

	idx := sort.SearchFloat64s(s.jd, jd)
	if idx < n && s.jd[idx] == jd {
		return s.pos[idx]
	}

	lo := idx - k/2
	lo = max(lo, 0)
	lo = min(lo, n-k)

	var out astro.Vec3
	for i := lo; i < lo+k; i++ {
		w := 1.0
		for j := lo; j < lo+k; j++ {
			if j != i {
				w *= (jd - s.jd[j]) / (s.jd[i] - s.jd[j])
			}
		}
		out = out.Add(s.pos[i].Scale(w))
	}
	return out
}
