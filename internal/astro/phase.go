package astro

import (
	"math"
)

// PhaseStage is one of the eight named lunar phase stages.
type PhaseStage int

const (
	NewMoon PhaseStage = iota
	WaxingCrescent
	FirstQuarter
	WaxingGibbous
	FullMoon
	WaningGibbous
	LastQuarter
	WaningCrescent
)

// PhaseStageWidth is the angular width of each stage in degrees.
const PhaseStageWidth = 45.0

var phaseStageNames = [...]string{
	NewMoon:        "New Moon",
	WaxingCrescent: "Waxing Crescent",
	FirstQuarter:   "First Quarter",
	WaxingGibbous:  "Waxing Gibbous",
	FullMoon:       "Full Moon",
	WaningGibbous:  "Waning Gibbous",
	LastQuarter:    "Last Quarter",
	WaningCrescent: "Waning Crescent",
}

// String returns the display name of the stage.
func (s PhaseStage) String() string {
	if s < NewMoon || s > WaningCrescent {
		return "Unknown"
	}
	return phaseStageNames[s]
}

// Classify maps a phase angle in degrees to its stage. Stage k covers
// [45k, 45k+45); angles outside [0, 360) are wrapped first.
func Classify(phaseDeg float64) PhaseStage {
	idx := int(NormalizeDegrees(phaseDeg) / PhaseStageWidth)
	if idx > int(WaningCrescent) {
		idx = int(WaningCrescent)
	}
	return PhaseStage(idx)
}

// IlluminatedFractionFromPhase returns the lit fraction of the disk for a
// Sun-Moon elongation: 0 at new moon (0°), 1 at full moon (180°).
func IlluminatedFractionFromPhase(phaseDeg float64) float64 {
	return clampFraction((1 - math.Cos(degToRad(phaseDeg))) / 2)
}

// PhaseAngle returns the Moon's ecliptic longitude minus the Sun's, in
// [0, 360), from geocentric equatorial vectors and the obliquity (radians).
func PhaseAngle(sun, moon Vec3, obliquity float64) float64 {
	lonSun := EclipticLongitude(EquatorialToEcliptic(sun, obliquity))
	lonMoon := EclipticLongitude(EquatorialToEcliptic(moon, obliquity))
	return NormalizeDegrees(lonMoon - lonSun)
}

// IlluminatedFraction returns the lit fraction of the Moon's disk seen from
// the point the vectors are referred to, using the Sun-Moon-observer angle.
func IlluminatedFraction(sun, moon Vec3) float64 {
	i := AngleBetween(sun.Sub(moon), moon.Scale(-1))
	return clampFraction((1 + math.Cos(degToRad(i))) / 2)
}

func clampFraction(k float64) float64 {
	if k < 0 {
		return 0
	}
	if k > 1 {
		return 1
	}
	return k
}
