package almanac

import (
	"fmt"

	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/discrete"
)

// PhaseAngle returns the Moon's geocentric ecliptic longitude minus the
// Sun's, in degrees in [0, 360).
func PhaseAngle(eph astro.Ephemeris, at astro.Instant) (float64, error) {
	sun, moon, err := sunMoon(eph, at)
	if err != nil {
		return 0, err
	}
	return astro.PhaseAngle(sun, moon, astro.TrueObliquity(at.JDE())), nil
}

// IlluminatedFraction returns the geocentric lit fraction of the Moon's
// disk from the Sun-Moon-Earth angle.
func IlluminatedFraction(eph astro.Ephemeris, at astro.Instant) (float64, error) {
	sun, moon, err := sunMoon(eph, at)
	if err != nil {
		return 0, err
	}
	return astro.IlluminatedFraction(sun, moon), nil
}

func sunMoon(eph astro.Ephemeris, at astro.Instant) (sun, moon astro.Vec3, err error) {
	if sun, err = eph.Position(astro.Sun, at); err != nil {
		return sun, moon, fmt.Errorf("position of sun: %w", err)
	}
	if moon, err = eph.Position(astro.Moon, at); err != nil {
		return sun, moon, fmt.Errorf("position of moon: %w", err)
	}
	return sun, moon, nil
}

// PhaseEvent is the instant of a principal lunar phase.
type PhaseEvent struct {
	At    astro.Instant
	Phase astro.PhaseStage // NewMoon, FirstQuarter, FullMoon or LastQuarter
}

// quarter is the principal phase most recently passed: 0 new moon,
// 1 first quarter, 2 full moon, 3 last quarter.
func quarter(eph astro.Ephemeris) discrete.StateFunc[int] {
	return func(at astro.Instant) (int, error) {
		deg, err := PhaseAngle(eph, at)
		if err != nil {
			return 0, err
		}
		return min(int(deg/90), 3), nil
	}
}

// MoonPhases returns the principal lunar phases inside span.
func MoonPhases(eph astro.Ephemeris, span astro.Interval, opts discrete.Options) ([]PhaseEvent, error) {
	transitions, err := discrete.Find(quarter(eph), span, opts)
	if err != nil {
		return nil, fmt.Errorf("moon phases: %w", err)
	}

	events := make([]PhaseEvent, 0, len(transitions))
	for _, tr := range transitions {
		events = append(events, PhaseEvent{At: tr.At, Phase: astro.PhaseStage(2 * tr.To)})
	}
	return events, nil
}
