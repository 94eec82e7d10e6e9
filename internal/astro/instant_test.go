package astro

import (
	"math"
	"testing"
	"time"
)

func TestInstantJD(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
		tol      float64
	}{
		{
			name:     "J2000 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
			tol:      0.0001,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
			tol:      0.0001,
		},
		{
			name:     "Known date 2024-01-01 00:00 UTC",
			time:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2460310.5,
			tol:      0.0001,
		},
		{
			name:     "Non-UTC zone is normalized",
			time:     time.Date(2024, 1, 1, 3, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)),
			expected: 2460310.5,
			tol:      0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := At(tt.time).JD()
			if math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("JD() = %v, want %v (±%v)", got, tt.expected, tt.tol)
			}
		})
	}
}

func TestInstantFromJDRoundtrip(t *testing.T) {
	orig := At(time.Date(2024, 6, 21, 17, 33, 12, 0, time.UTC))
	back := FromJD(orig.JD())

	if d := back.Sub(orig); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("FromJD(JD()) off by %v", d)
	}
}

func TestInstantDeltaT(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		min, max float64 // seconds
	}{
		{"1990", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 50, 65},
		{"1980", time.Date(1980, 6, 1, 0, 0, 0, 0, time.UTC), 51.18, 51.19},
		{"2015 before leap", time.Date(2015, 6, 30, 12, 0, 0, 0, time.UTC), 67.18, 67.19},
		{"2015 after leap", time.Date(2015, 7, 1, 12, 0, 0, 0, time.UTC), 68.18, 68.19},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 67, 71},
		{"2050", time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC), 69, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := At(tt.time)
			dt := i.DeltaT()
			if dt < tt.min || dt > tt.max {
				t.Errorf("DeltaT() = %.2f s, want between %.0f and %.0f", dt, tt.min, tt.max)
			}

			gotDiff := (i.JDE() - i.JD()) * 86400
			if math.Abs(gotDiff-dt) > 0.01 {
				t.Errorf("JDE-JD = %.3f s, want DeltaT %.3f s", gotDiff, dt)
			}
		})
	}
}

func TestDeltaTContinuity(t *testing.T) {
	joins := []time.Time{
		time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC),
		leapSecondsHorizon,
		time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2150, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, j := range joins {
		before := At(j.Add(-12 * time.Hour)).DeltaT()
		after := At(j.Add(12 * time.Hour)).DeltaT()
		if math.Abs(after-before) > 1.5 {
			t.Errorf("DeltaT jumps %.2f s -> %.2f s across %s", before, after, j.Format("2006-01-02"))
		}
	}
}

func TestInstantOrdering(t *testing.T) {
	a := At(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := a.Add(90 * time.Second)

	if !a.Before(b) || !b.After(a) {
		t.Error("expected a before b")
	}
	if b.Sub(a) != 90*time.Second {
		t.Errorf("Sub = %v, want 90s", b.Sub(a))
	}
	if !a.Equal(At(a.Time().In(time.FixedZone("X", -3*3600)))) {
		t.Error("instants in different zones should be equal")
	}
	if a.IsZero() || !(Instant{}).IsZero() {
		t.Error("IsZero mismatch")
	}
	if a.String() != "2024-01-01T00:00:00Z" {
		t.Errorf("String() = %q", a.String())
	}
}

func TestInterval(t *testing.T) {
	start := At(time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC))
	end := start.Add(24 * time.Hour)

	iv, err := NewInterval(start, end)
	if err != nil {
		t.Fatalf("NewInterval: %v", err)
	}
	if iv.Duration() != 24*time.Hour {
		t.Errorf("Duration = %v, want 24h", iv.Duration())
	}
	if !iv.Contains(start) {
		t.Error("interval should contain its start")
	}
	if iv.Contains(end) {
		t.Error("interval should not contain its end")
	}

	if _, err := NewInterval(end, start); err != ErrEmptyInterval {
		t.Errorf("inverted interval error = %v, want ErrEmptyInterval", err)
	}
	if _, err := NewInterval(start, start); err != ErrEmptyInterval {
		t.Errorf("empty interval error = %v, want ErrEmptyInterval", err)
	}
}
