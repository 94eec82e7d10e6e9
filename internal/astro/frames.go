// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"math"

	"github.com/soniakeys/meeus/v3/nutation"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// AngleBetween returns the angle between two vectors in degrees.
// Zero vectors yield 0.
func AngleBetween(a, b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return radToDeg(math.Acos(clampUnit(a.Dot(b) / (na * nb))))
}

// FromSpherical builds a vector from a longitude-like angle, a latitude-like
// angle (both radians) and a radius.
func FromSpherical(lonRad, latRad, r float64) Vec3 {
	sinLon, cosLon := math.Sincos(lonRad)
	sinLat, cosLat := math.Sincos(latRad)
	return Vec3{
		X: r * cosLat * cosLon,
		Y: r * cosLat * sinLon,
		Z: r * sinLat,
	}
}

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / AU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// EclipticLatitude returns the ecliptic latitude in degrees for a vector.
func EclipticLatitude(v Vec3) float64 {
	r := v.Norm()
	if r == 0 {
		return 0
	}
	return radToDeg(math.Asin(v.Z / r))
}

// EclipticLongitude returns the ecliptic longitude in degrees for a vector.
func EclipticLongitude(v Vec3) float64 {
	lon := radToDeg(math.Atan2(v.Y, v.X))
	if lon < 0 {
		lon += 360
	}
	return lon
}

// J2000Obliquity is the Earth's axial tilt at the J2000 epoch in radians.
const J2000Obliquity = 23.439291 * math.Pi / 180

// TrueObliquity returns the obliquity of the ecliptic of date, nutation
// included, in radians.
func TrueObliquity(jde float64) float64 {
	_, dEps := nutation.Nutation(jde)
	return (nutation.MeanObliquity(jde) + dEps).Rad()
}

// EquatorialToEcliptic converts equatorial XYZ to ecliptic XYZ for the given
// obliquity (radians). Output is in the same units as the input.
func EquatorialToEcliptic(eq Vec3, obliquity float64) Vec3 {
	sinE, cosE := math.Sincos(obliquity)

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial converts ecliptic XYZ to equatorial XYZ for the given
// obliquity (radians).
func EclipticToEquatorial(ecl Vec3, obliquity float64) Vec3 {
	sinE, cosE := math.Sincos(obliquity)

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// PrecessFromJ2000 rotates a vector referred to the J2000 mean equator and
// equinox onto the mean equator and equinox of the given Julian ephemeris
// day, using the IAU 1976 precession angles.
func PrecessFromJ2000(v Vec3, jde float64) Vec3 {
	T := (jde - 2451545.0) / 36525.0
	arcsec := math.Pi / (180 * 3600)

	zeta := (2306.2181*T + 0.30188*T*T + 0.017998*T*T*T) * arcsec
	z := (2306.2181*T + 1.09468*T*T + 0.018203*T*T*T) * arcsec
	theta := (2004.3109*T - 0.42665*T*T - 0.041833*T*T*T) * arcsec

	sz, cz := math.Sincos(zeta)
	sZ, cZ := math.Sincos(z)
	sT, cT := math.Sincos(theta)

	// P = Rz(-z) · Ry(theta) · Rz(-zeta)
	xx := cZ*cT*cz - sZ*sz
	xy := -cZ*cT*sz - sZ*cz
	xz := -cZ * sT
	yx := sZ*cT*cz + cZ*sz
	yy := -sZ*cT*sz + cZ*cz
	yz := -sZ * sT
	zx := sT * cz
	zy := -sT * sz
	zz := cT

	return Vec3{
		X: xx*v.X + xy*v.Y + xz*v.Z,
		Y: yx*v.X + yy*v.Y + yz*v.Z,
		Z: zx*v.X + zy*v.Y + zz*v.Z,
	}
}

// LightTimeFromKm returns the one-way light time in seconds for a distance in km.
func LightTimeFromKm(km float64) float64 {
	return km / 299792.458
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
