package ephem

import (
	"fmt"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/litescript/lunas/internal/astro"
)

// MeeusProvider computes apparent Sun and Moon positions from the analytic
// theories in Meeus, Astronomical Algorithms (VSOP87-derived Sun, ELP-2000
// truncated Moon). Accuracy is a few arc seconds for the Sun and about ten
// for the Moon, well under the one-minute resolution of rise/set times.
type MeeusProvider struct {
	coverage astro.Interval
}

// MeeusOption configures a MeeusProvider.
type MeeusOption func(*MeeusProvider)

// WithCoverage limits the span the provider answers for.
func WithCoverage(cov astro.Interval) MeeusOption {
	return func(p *MeeusProvider) {
		p.coverage = cov
	}
}

// NewMeeusProvider creates an analytic provider.
func NewMeeusProvider(opts ...MeeusOption) *MeeusProvider {
	p := &MeeusProvider{coverage: DefaultCoverage()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *MeeusProvider) Name() string { return "meeus" }

// Coverage implements Provider.
func (p *MeeusProvider) Coverage() astro.Interval { return p.coverage }

// Position implements astro.Ephemeris.
func (p *MeeusProvider) Position(body astro.Body, at astro.Instant) (astro.Vec3, error) {
	if err := checkCoverage(p.Name(), p.coverage, body, at); err != nil {
		return astro.Vec3{}, err
	}

	jde := at.JDE()
	switch body {
	case astro.Sun:
		return sunPosition(jde), nil
	case astro.Moon:
		return moonPosition(jde), nil
	case astro.Earth:
		return astro.Vec3{}, nil
	default:
		return astro.Vec3{}, fmt.Errorf("%s: %w: %s", p.Name(), ErrUnknownBody, body)
	}
}

func sunPosition(jde float64) astro.Vec3 {
	ra, dec := solar.ApparentEquatorial(jde)
	r := solar.Radius(base.J2000Century(jde)) * astro.AU
	return astro.FromSpherical(unit.Angle(ra).Rad(), dec.Rad(), r)
}

func moonPosition(jde float64) astro.Vec3 {
	lon, lat, dist := moonposition.Position(jde)
	dPsi, dEps := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde) + dEps

	ecl := astro.FromSpherical((lon + dPsi).Rad(), lat.Rad(), dist)
	return astro.EclipticToEquatorial(ecl, eps.Rad())
}
