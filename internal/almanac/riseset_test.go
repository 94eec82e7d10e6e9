package almanac

import (
	"errors"
	"testing"
	"time"

	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/discrete"
	"github.com/litescript/lunas/internal/ephem"
)

var (
	buenosAires  = astro.Observer{LatDeg: -34.6037, LonDeg: -58.3816, Name: "Buenos Aires"}
	longyearbyen = astro.Observer{LatDeg: 78.2232, LonDeg: 15.6267, Name: "Longyearbyen"}
	art          = time.FixedZone("ART", -3*3600)
)

// localDay returns the UTC span of a civil day in loc.
func localDay(y int, m time.Month, d int, loc *time.Location) astro.Interval {
	start := astro.At(time.Date(y, m, d, 0, 0, 0, 0, loc))
	return astro.Interval{Start: start, End: start.Add(24 * time.Hour)}
}

func clockBetween(t *testing.T, label string, at astro.Instant, loc *time.Location, from, to string) {
	t.Helper()
	hm := at.In(loc).Format("15:04")
	if hm < from || hm > to {
		t.Errorf("%s at %s local, want between %s and %s", label, hm, from, to)
	}
}

func TestRisingsAndSettings_BuenosAiresSun(t *testing.T) {
	frame := astro.NewFrame(buenosAires, ephem.NewMeeusProvider())

	events, err := RisingsAndSettings(frame, astro.Sun, localDay(2024, 1, 1, art), discrete.DefaultOptions())
	if err != nil {
		t.Fatalf("RisingsAndSettings: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}

	rise, set := FirstRiseSet(events)
	if rise == nil || set == nil {
		t.Fatalf("rise=%v set=%v, want both", rise, set)
	}
	// Published: sunrise 05:42, sunset 20:09 (UTC-3).
	clockBetween(t, "sunrise", rise.At, art, "05:38", "05:46")
	clockBetween(t, "sunset", set.At, art, "20:05", "20:13")

	if rise.Body != astro.Sun || set.Body != astro.Sun {
		t.Errorf("event bodies = %v, %v", rise.Body, set.Body)
	}
}

func TestRisingsAndSettings_PolarDayAndNight(t *testing.T) {
	frame := astro.NewFrame(longyearbyen, ephem.NewMeeusProvider())

	tests := []struct {
		name string
		span astro.Interval
		up   bool
	}{
		{"midnight sun", localDay(2024, 6, 21, time.UTC), true},
		{"polar night", localDay(2024, 12, 21, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := RisingsAndSettings(frame, astro.Sun, tt.span, discrete.DefaultOptions())
			if err != nil {
				t.Fatalf("RisingsAndSettings: %v", err)
			}
			if len(events) != 0 {
				t.Errorf("got %d events, want none", len(events))
			}

			rise, set := FirstRiseSet(events)
			if rise != nil || set != nil {
				t.Errorf("FirstRiseSet = %v, %v; want nil, nil", rise, set)
			}

			up, err := AltitudeAbove(frame, astro.Sun, astro.HorizonDepression)(tt.span.Start)
			if err != nil {
				t.Fatalf("AltitudeAbove: %v", err)
			}
			if up != tt.up {
				t.Errorf("sun up = %v, want %v", up, tt.up)
			}
		})
	}
}

func TestRisingsAndSettings_MoonAlternates(t *testing.T) {
	frame := astro.NewFrame(buenosAires, ephem.NewMeeusProvider())
	span := astro.Interval{
		Start: astro.At(time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)),
		End:   astro.At(time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC)),
	}

	events, err := RisingsAndSettings(frame, astro.Moon, span, discrete.DefaultOptions())
	if err != nil {
		t.Fatalf("RisingsAndSettings: %v", err)
	}
	// The Moon rises about 50 minutes later each day: roughly 13 events a week.
	if len(events) < 12 || len(events) > 14 {
		t.Errorf("got %d moon events in a week, want 12-14", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Kind == events[i-1].Kind {
			t.Errorf("events %d and %d are both %v", i-1, i, events[i].Kind)
		}
		if !events[i-1].At.Before(events[i].At) {
			t.Errorf("events out of order at %d", i)
		}
	}
	for _, e := range events {
		if !span.Contains(e.At) {
			t.Errorf("event at %s outside span", e.At)
		}
	}
}

func TestRisingsAndSettings_DataRange(t *testing.T) {
	cov := astro.Interval{
		Start: astro.At(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		End:   astro.At(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}
	frame := astro.NewFrame(buenosAires, ephem.NewMeeusProvider(ephem.WithCoverage(cov)))

	_, err := RisingsAndSettings(frame, astro.Sun, localDay(2024, 1, 1, art), discrete.DefaultOptions())
	var dre *ephem.DataRangeError
	if !errors.As(err, &dre) {
		t.Fatalf("error = %v, want *ephem.DataRangeError", err)
	}
}

func TestFirstRiseSet(t *testing.T) {
	base := astro.At(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	events := []Event{
		{At: base.Add(1 * time.Hour), Kind: Setting},
		{At: base.Add(12 * time.Hour), Kind: Rising},
		{At: base.Add(23 * time.Hour), Kind: Setting},
	}

	rise, set := FirstRiseSet(events)
	if rise == nil || !rise.At.Equal(events[1].At) {
		t.Errorf("rise = %+v, want second event", rise)
	}
	if set == nil || !set.At.Equal(events[0].At) {
		t.Errorf("set = %+v, want first event", set)
	}

	rise, set = FirstRiseSet(events[:1])
	if rise != nil || set == nil {
		t.Errorf("FirstRiseSet(setting only) = %v, %v", rise, set)
	}
}

func TestEventKindString(t *testing.T) {
	if Rising.String() != "rise" || Setting.String() != "set" || EventKind(5).String() != "unknown" {
		t.Errorf("unexpected names: %q %q %q", Rising, Setting, EventKind(5))
	}
}
