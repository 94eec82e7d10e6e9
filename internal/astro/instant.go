package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/julian"
)

// Instant is an absolute point in time. Civil time is kept as UTC; the
// dynamical (TT) timescale used for ephemeris evaluation is derived on demand.
// The zero Instant is not a valid time.
type Instant struct {
	t time.Time
}

// At returns the Instant for t.
func At(t time.Time) Instant {
	return Instant{t: t.UTC()}
}

// FromJD returns the Instant for a UT Julian date.
func FromJD(jd float64) Instant {
	return At(julian.JDToTime(jd))
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time { return i.t }

// In returns the instant as a time.Time in loc.
func (i Instant) In(loc *time.Location) time.Time { return i.t.In(loc) }

// IsZero reports whether i is the zero Instant.
func (i Instant) IsZero() bool { return i.t.IsZero() }

// Add returns i+d.
func (i Instant) Add(d time.Duration) Instant { return Instant{t: i.t.Add(d)} }

// Sub returns i-u.
func (i Instant) Sub(u Instant) time.Duration { return i.t.Sub(u.t) }

// Before reports whether i is before u.
func (i Instant) Before(u Instant) bool { return i.t.Before(u.t) }

// After reports whether i is after u.
func (i Instant) After(u Instant) bool { return i.t.After(u.t) }

// Equal reports whether i and u are the same instant.
func (i Instant) Equal(u Instant) bool { return i.t.Equal(u.t) }

// String formats the instant as RFC 3339 UTC.
func (i Instant) String() string { return i.t.Format(time.RFC3339) }

// JD returns the Julian date on the UT scale.
func (i Instant) JD() float64 {
	return julian.TimeToJD(i.t)
}

// DeltaT returns TT-UT in seconds.
func (i Instant) DeltaT() float64 {
	return deltaT(i.JD())
}

// JDE returns the Julian ephemeris day (TT scale).
func (i Instant) JDE() float64 {
	jd := i.JD()
	return jd + deltaT(jd)/86400
}

// J2000Century returns Julian centuries of TT since J2000.0.
func (i Instant) J2000Century() float64 {
	return base.J2000Century(i.JDE())
}

// ttMinusTAI is the constant offset between TT and TAI in seconds.
const ttMinusTAI = 32.184

// leapSeconds lists TAI-UTC in seconds from each effective date on.
var leapSeconds = []struct {
	from   time.Time
	offset float64
}{
	{time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1972, 7, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1974, 1, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(1976, 1, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(1977, 1, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(1979, 1, 1, 0, 0, 0, 0, time.UTC), 18},
	{time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 19},
	{time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 20},
	{time.Date(1982, 7, 1, 0, 0, 0, 0, time.UTC), 21},
	{time.Date(1983, 7, 1, 0, 0, 0, 0, time.UTC), 22},
	{time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), 23},
	{time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC), 24},
	{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 25},
	{time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 26},
	{time.Date(1992, 7, 1, 0, 0, 0, 0, time.UTC), 27},
	{time.Date(1993, 7, 1, 0, 0, 0, 0, time.UTC), 28},
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
}

// leapSecondsHorizon is the end of the span where the leap-second table is
// trusted. Later instants extrapolate from the value at the horizon.
var leapSecondsHorizon = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

// deltaT returns TT-UT in seconds. UTC stands in for UT1 (they differ by
// less than 0.9 s).
//   - 1972 up to leapSecondsHorizon: leap-second table plus 32.184 s.
//   - 1657 to 1972: Meeus' tabulated values.
//   - after the horizon: Espenak-Meeus polynomials shifted to join the
//     table at the horizon.
//   - earlier: Meeus' historical polynomials.
func deltaT(jd float64) float64 {
	t := julian.JDToTime(jd)
	year := decimalYear(jd)
	switch {
	case !t.Before(leapSecondsHorizon):
		horizon := decimalYear(julian.TimeToJD(leapSecondsHorizon))
		return taiMinusUTC(leapSecondsHorizon) + ttMinusTAI + espenakMeeus(year) - espenakMeeus(horizon)
	case !t.Before(leapSeconds[0].from):
		return taiMinusUTC(t) + ttMinusTAI
	case year >= 1657:
		return deltat.Interp10A(jd).Sec()
	case year >= 948:
		return deltat.Poly948to1600(year).Sec()
	default:
		return deltat.PolyBefore948(year).Sec()
	}
}

func decimalYear(jd float64) float64 {
	return 2000 + (jd-base.J2000)/365.25
}

// taiMinusUTC returns the accumulated leap seconds in effect at t.
func taiMinusUTC(t time.Time) float64 {
	offset := 0.0
	for _, ls := range leapSeconds {
		if t.Before(ls.from) {
			break
		}
		offset = ls.offset
	}
	return offset
}

// espenakMeeus is the Espenak-Meeus (2006) ΔT fit for years after 2005.
func espenakMeeus(year float64) float64 {
	switch {
	case year < 2050:
		t := year - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case year < 2150:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)
	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	}
}
