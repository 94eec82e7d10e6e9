package astro

import (
	"fmt"
	"math"
)

// Body identifies a solar-system body the ephemeris can place.
type Body int

const (
	Sun Body = iota
	Moon
	Earth
)

// String returns the body name.
func (b Body) String() string {
	switch b {
	case Sun:
		return "sun"
	case Moon:
		return "moon"
	case Earth:
		return "earth"
	default:
		return "unknown"
	}
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg  float64 // Geodetic latitude in degrees (north positive)
	LonDeg  float64 // Longitude in degrees (east positive)
	HeightM float64 // Height above the ellipsoid in meters
	Name    string  // Optional name for the site
}

// Validate reports whether the observer coordinates are in range.
func (o Observer) Validate() error {
	if math.IsNaN(o.LatDeg) || o.LatDeg < -90 || o.LatDeg > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", o.LatDeg)
	}
	if math.IsNaN(o.LonDeg) || o.LonDeg < -180 || o.LonDeg > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", o.LonDeg)
	}
	return nil
}

// Horizontal holds observer-relative coordinates of a body.
type Horizontal struct {
	AzDeg   float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	AltDeg  float64 // Geometric altitude in degrees (0=horizon, 90=zenith)
	RangeKm float64 // Topocentric distance
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod of a tiny negative value can round back up to 360.
	if a >= 360 {
		a = 0
	}
	return a
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
