// Package almanac derives rise/set events, lunar phases and altitude
// traces from an ephemeris and a topocentric frame.
package almanac

import (
	"fmt"

	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/discrete"
)

// EventKind distinguishes risings from settings.
type EventKind int

const (
	Rising EventKind = iota
	Setting
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case Rising:
		return "rise"
	case Setting:
		return "set"
	default:
		return "unknown"
	}
}

// Event is a rising or setting of a body.
type Event struct {
	At   astro.Instant
	Kind EventKind
	Body astro.Body
}

// AltitudeAbove returns a state function that is true while body's
// altitude is at or above threshold degrees.
func AltitudeAbove(frame *astro.Frame, body astro.Body, threshold float64) discrete.StateFunc[bool] {
	return func(at astro.Instant) (bool, error) {
		alt, err := frame.Altitude(body, at)
		if err != nil {
			return false, err
		}
		return alt >= threshold, nil
	}
}

// RisingsAndSettings returns every rising and setting of body inside span,
// in chronological order. Polar day or night yields no events.
func RisingsAndSettings(frame *astro.Frame, body astro.Body, span astro.Interval, opts discrete.Options) ([]Event, error) {
	transitions, err := discrete.Find(AltitudeAbove(frame, body, astro.HorizonDepression), span, opts)
	if err != nil {
		return nil, fmt.Errorf("%s rise/set: %w", body, err)
	}

	events := make([]Event, 0, len(transitions))
	for _, tr := range transitions {
		kind := Setting
		if tr.To {
			kind = Rising
		}
		events = append(events, Event{At: tr.At, Kind: kind, Body: body})
	}
	return events, nil
}

// FirstRiseSet returns the first rising and the first setting in events.
// Either is nil when absent.
func FirstRiseSet(events []Event) (rise, set *Event) {
	for i := range events {
		switch events[i].Kind {
		case Rising:
			if rise == nil {
				rise = &events[i]
			}
		case Setting:
			if set == nil {
				set = &events[i]
			}
		}
		if rise != nil && set != nil {
			break
		}
	}
	return rise, set
}
