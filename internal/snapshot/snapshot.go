// Package snapshot assembles the daily Sun and Moon almanac for an
// observer: rise and set times, lunar phase, illumination and distances.
package snapshot

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/litescript/lunas/internal/almanac"
	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/discrete"
	"github.com/litescript/lunas/internal/logging"
)

// BodyEvents holds the first rise and set of a body in the local day, as
// local timestamps. A nil field means the event does not occur.
type BodyEvents struct {
	Rise *string `json:"rise"`
	Set  *string `json:"set"`
}

// Snapshot is the almanac for one local day. Phase, illumination and
// distances refer to the start of the day.
type Snapshot struct {
	Date                string     `json:"date"`
	Latitude            float64    `json:"latitude"`
	Longitude           float64    `json:"longitude"`
	OffsetHours         float64    `json:"offset_hours"`
	Sun                 BodyEvents `json:"sun"`
	Moon                BodyEvents `json:"moon"`
	Phase               string     `json:"phase"`
	PhaseAngle          float64    `json:"phase_angle"`
	IlluminatedFraction float64    `json:"illuminated_fraction"`
	MoonDistanceKm      float64    `json:"moon_distance_km"`
	SunDistanceKm       float64    `json:"sun_distance_km"`
}

// Assembler computes snapshots against one ephemeris. It holds no mutable
// state and is safe for concurrent use.
type Assembler struct {
	eph    astro.Ephemeris
	clock  clockwork.Clock
	policy OffsetPolicy
	search discrete.Options
	log    zerolog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock sets the clock used to resolve "today".
func WithClock(c clockwork.Clock) Option {
	return func(a *Assembler) { a.clock = c }
}

// WithOffsetPolicy sets the accepted UTC offset range.
func WithOffsetPolicy(p OffsetPolicy) Option {
	return func(a *Assembler) { a.policy = p }
}

// WithSearchOptions sets the rise/set search resolution.
func WithSearchOptions(o discrete.Options) Option {
	return func(a *Assembler) { a.search = o }
}

// WithLogger sets the assembler logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

// NewAssembler creates an assembler over eph.
func NewAssembler(eph astro.Ephemeris, opts ...Option) *Assembler {
	a := &Assembler{
		eph:    eph,
		clock:  clockwork.NewRealClock(),
		policy: OffsetStrict,
		search: discrete.DefaultOptions(),
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Day is a validated request resolved to its UTC window.
type Day struct {
	Date     string
	Observer astro.Observer
	Zone     *time.Location
	Window   astro.Interval
}

// Resolve validates req and derives the UTC window
// [local midnight - offset, +24h).
func (a *Assembler) Resolve(req Request) (Day, error) {
	if err := req.validate(a.policy); err != nil {
		return Day{}, err
	}

	zone := OffsetZone(req.OffsetHours)
	date := req.Date
	if date == "" {
		date = a.clock.Now().UTC().Format(DateLayout)
	}

	midnight, err := parseDate(date, zone)
	if err != nil {
		return Day{}, err
	}
	start := astro.At(midnight)
	window, err := astro.NewInterval(start, start.Add(24*time.Hour))
	if err != nil {
		return Day{}, err
	}

	return Day{
		Date:     date,
		Observer: astro.Observer{LatDeg: req.LatDeg, LonDeg: req.LonDeg},
		Zone:     zone,
		Window:   window,
	}, nil
}

// Compute builds the snapshot for req. Input problems are reported as
// *InputError; any ephemeris failure fails the whole snapshot.
func (a *Assembler) Compute(req Request) (*Snapshot, error) {
	day, err := a.Resolve(req)
	if err != nil {
		return nil, err
	}

	frame := astro.NewFrame(day.Observer, a.eph)
	snap := &Snapshot{
		Date:        day.Date,
		Latitude:    req.LatDeg,
		Longitude:   req.LonDeg,
		OffsetHours: req.OffsetHours,
	}

	if snap.Sun, err = a.events(frame, astro.Sun, day); err != nil {
		return nil, err
	}
	if snap.Moon, err = a.events(frame, astro.Moon, day); err != nil {
		return nil, err
	}

	ref := day.Window.Start

	phase, err := almanac.PhaseAngle(a.eph, ref)
	if err != nil {
		return nil, fmt.Errorf("phase angle: %w", err)
	}
	fraction, err := almanac.IlluminatedFraction(a.eph, ref)
	if err != nil {
		return nil, fmt.Errorf("illuminated fraction: %w", err)
	}
	moonKm, err := frame.Distance(astro.Moon, ref)
	if err != nil {
		return nil, fmt.Errorf("moon distance: %w", err)
	}
	sunKm, err := frame.Distance(astro.Sun, ref)
	if err != nil {
		return nil, fmt.Errorf("sun distance: %w", err)
	}

	snap.Phase = astro.Classify(phase).String()
	snap.PhaseAngle = round(phase, 2)
	snap.IlluminatedFraction = round(fraction, 4)
	snap.MoonDistanceKm = round(moonKm, 2)
	snap.SunDistanceKm = round(sunKm, 2)

	a.log.Debug().
		Str("date", day.Date).
		Float64("lat", req.LatDeg).
		Float64("lon", req.LonDeg).
		Str("phase", snap.Phase).
		Msg("snapshot computed")

	return snap, nil
}

func (a *Assembler) events(frame *astro.Frame, body astro.Body, day Day) (BodyEvents, error) {
	events, err := almanac.RisingsAndSettings(frame, body, day.Window, a.search)
	if err != nil {
		return BodyEvents{}, err
	}

	var out BodyEvents
	rise, set := almanac.FirstRiseSet(events)
	if rise != nil {
		s := FormatLocal(rise.At, day.Zone)
		out.Rise = &s
	}
	if set != nil {
		s := FormatLocal(set.At, day.Zone)
		out.Set = &s
	}
	return out, nil
}

// Traces returns Sun and Moon altitude samples across the requested day.
func (a *Assembler) Traces(req Request, step time.Duration) (sun, moon *almanac.AltitudeTrace, err error) {
	day, err := a.Resolve(req)
	if err != nil {
		return nil, nil, err
	}

	frame := astro.NewFrame(day.Observer, a.eph)
	if sun, err = almanac.ComputeAltitudeTrace(frame, astro.Sun, day.Window, step); err != nil {
		return nil, nil, err
	}
	if moon, err = almanac.ComputeAltitudeTrace(frame, astro.Moon, day.Window, step); err != nil {
		return nil, nil, err
	}
	return sun, moon, nil
}

// MaxPhaseDays bounds the span of a phase listing.
const MaxPhaseDays = 366

// phaseStep is comfortably shorter than the ~7.4 days between quarters.
const phaseStep = 6 * time.Hour

// PhaseEntry is a principal lunar phase at a local timestamp.
type PhaseEntry struct {
	Phase string `json:"phase"`
	At    string `json:"at"`
}

// PhaseReport lists the principal phases over a run of days.
type PhaseReport struct {
	From   string       `json:"from"`
	Days   int          `json:"days"`
	Phases []PhaseEntry `json:"phases"`
}

// Phases lists the principal lunar phases in the days days starting at
// the requested local date.
func (a *Assembler) Phases(req Request, days int) (*PhaseReport, error) {
	if days < 1 || days > MaxPhaseDays {
		return nil, inputErr("days", days, fmt.Sprintf("must be within [1, %d]", MaxPhaseDays))
	}
	day, err := a.Resolve(req)
	if err != nil {
		return nil, err
	}

	span, err := astro.NewInterval(day.Window.Start, day.Window.Start.Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, err
	}

	opts := a.search
	opts.Step = phaseStep
	events, err := almanac.MoonPhases(a.eph, span, opts)
	if err != nil {
		return nil, err
	}

	report := &PhaseReport{From: day.Date, Days: days, Phases: make([]PhaseEntry, 0, len(events))}
	for _, e := range events {
		report.Phases = append(report.Phases, PhaseEntry{
			Phase: e.Phase.String(),
			At:    FormatLocal(e.At, day.Zone),
		})
	}
	return report, nil
}
