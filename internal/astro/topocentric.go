package astro

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// HorizonDepression is the altitude (degrees) at which a body's upper limb
// touches the visible horizon: standard refraction plus mean semi-diameter.
const HorizonDepression = -0.8333

// Ephemeris supplies geocentric body positions (km, equatorial frame of date).
type Ephemeris interface {
	Position(body Body, at Instant) (Vec3, error)
}

// Frame is the topocentric frame of one observer. It is immutable and safe
// for concurrent use as long as its Ephemeris is.
type Frame struct {
	obs Observer
	eph Ephemeris

	lonRad         float64
	sinLat, cosLat float64
	rhoSinKm       float64 // observer distance from the equatorial plane
	rhoCosKm       float64 // observer distance from the rotation axis
}

// NewFrame builds the topocentric frame for obs.
func NewFrame(obs Observer, eph Ephemeris) *Frame {
	s, c := globe.Earth76.ParallaxConstants(unit.AngleFromDeg(obs.LatDeg), obs.HeightM)
	er := globe.Earth76.Er
	sinLat, cosLat := math.Sincos(degToRad(obs.LatDeg))

	return &Frame{
		obs:      obs,
		eph:      eph,
		lonRad:   degToRad(obs.LonDeg),
		sinLat:   sinLat,
		cosLat:   cosLat,
		rhoSinKm: s * er,
		rhoCosKm: c * er,
	}
}

// Observer returns the frame's observer.
func (f *Frame) Observer() Observer { return f.obs }

// Ephemeris returns the frame's position source.
func (f *Frame) Ephemeris() Ephemeris { return f.eph }

// LocalSiderealAngle returns the local apparent sidereal angle in radians.
func (f *Frame) LocalSiderealAngle(at Instant) float64 {
	gast := sidereal.Apparent(at.JD()).Angle().Rad()
	return math.Mod(gast+f.lonRad, 2*math.Pi)
}

// ObserverPosition returns the observer's geocentric position in km.
func (f *Frame) ObserverPosition(at Instant) Vec3 {
	sinT, cosT := math.Sincos(f.LocalSiderealAngle(at))
	return Vec3{
		X: f.rhoCosKm * cosT,
		Y: f.rhoCosKm * sinT,
		Z: f.rhoSinKm,
	}
}

// topocentric returns the body vector seen from the observer together with
// the local sidereal angle it was evaluated at.
func (f *Frame) topocentric(body Body, at Instant) (Vec3, float64, error) {
	pos, err := f.eph.Position(body, at)
	if err != nil {
		return Vec3{}, 0, fmt.Errorf("position of %s: %w", body, err)
	}

	theta := f.LocalSiderealAngle(at)
	sinT, cosT := math.Sincos(theta)
	obsPos := Vec3{X: f.rhoCosKm * cosT, Y: f.rhoCosKm * sinT, Z: f.rhoSinKm}

	return pos.Sub(obsPos), theta, nil
}

// Horizontal returns azimuth, geometric altitude and topocentric range of body.
func (f *Frame) Horizontal(body Body, at Instant) (Horizontal, error) {
	d, theta, err := f.topocentric(body, at)
	if err != nil {
		return Horizontal{}, err
	}

	rng := d.Norm()
	if rng == 0 {
		return Horizontal{AltDeg: 90}, nil
	}

	sinT, cosT := math.Sincos(theta)
	up := Vec3{X: f.cosLat * cosT, Y: f.cosLat * sinT, Z: f.sinLat}
	north := Vec3{X: -f.sinLat * cosT, Y: -f.sinLat * sinT, Z: f.cosLat}
	east := Vec3{X: -sinT, Y: cosT}

	alt := math.Asin(clampUnit(d.Dot(up) / rng))
	az := math.Atan2(d.Dot(east), d.Dot(north))

	return Horizontal{
		AzDeg:   NormalizeDegrees(radToDeg(az)),
		AltDeg:  radToDeg(alt),
		RangeKm: rng,
	}, nil
}

// Altitude returns the geometric altitude of body in degrees.
func (f *Frame) Altitude(body Body, at Instant) (float64, error) {
	h, err := f.Horizontal(body, at)
	if err != nil {
		return 0, err
	}
	return h.AltDeg, nil
}

// Distance returns the topocentric distance to body in km.
func (f *Frame) Distance(body Body, at Instant) (float64, error) {
	d, _, err := f.topocentric(body, at)
	if err != nil {
		return 0, err
	}
	return d.Norm(), nil
}
